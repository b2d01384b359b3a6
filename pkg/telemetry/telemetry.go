// Package telemetry configures the OpenTelemetry trace and metric providers.
package telemetry

import (
	"context"
	"fmt"

	"github.com/abgdnv/gocheckout/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func newResource(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
}

// NewTracerProvider installs a global tracer provider exporting over OTLP/HTTP.
// With no endpoint configured it installs a provider without exporters, so spans
// still carry trace IDs into the logs.
func NewTracerProvider(ctx context.Context, serviceName string, cfg config.TelemetryConfig) (*tracesdk.TracerProvider, error) {
	opts := []tracesdk.TracerProviderOption{tracesdk.WithResource(newResource(serviceName))}
	if cfg.TracingEnabled() {
		collectorOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Traces.OtlpHttp.Endpoint),
			otlptracehttp.WithTimeout(cfg.Traces.OtlpHttp.Timeout),
		}
		if cfg.Traces.OtlpHttp.Insecure {
			collectorOpts = append(collectorOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, collectorOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, tracesdk.WithBatcher(exporter))
	}
	tp := tracesdk.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}

// NewMeterProvider installs a global meter provider whose instruments are exposed
// through the given Prometheus registerer.
func NewMeterProvider(serviceName string, reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName)),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}
