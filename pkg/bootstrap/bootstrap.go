// Package bootstrap builds the process-wide dependencies shared by the services.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/abgdnv/gocheckout/pkg/config"
	"github.com/abgdnv/gocheckout/pkg/logger"
	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/abgdnv/gocheckout/pkg/nats"
)

// NewLogger creates a JSON slog.Logger at the given level that adds request-scoped attributes.
func NewLogger(level string, w io.Writer) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	return slog.New(logger.NewContextHandler(slog.NewJSONHandler(w, loggerOpts)))
}

// NewPublisher connects to NATS JetStream, ensures the event stream exists and wraps the
// publisher with a circuit breaker. With NATS disabled it returns a NopPublisher.
// The returned close function drains the connection.
func NewPublisher(ctx context.Context, natsCfg config.NATSConfig, cbCfg config.CircuitBreakerConfig, log *slog.Logger) (messaging.Publisher, func(), error) {
	if !natsCfg.Enabled {
		log.Info("NATS disabled, events will not be published")
		return messaging.NopPublisher{}, func() {}, nil
	}
	nc, err := nats.NewClient(natsCfg.Url, natsCfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := nats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, natsCfg.Timeout)
	defer cancel()
	subjects := []string{messaging.CheckoutCompletedSubject, messaging.ShipmentRequestedSubject}
	if _, err := nats.EnsureStream(streamCtx, js, natsCfg.Stream, subjects); err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to prepare event stream: %w", err)
	}
	log.Info("Connected to NATS", slog.String("url", natsCfg.Url), slog.String("stream", natsCfg.Stream))

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			log.Error("Failed to drain NATS connection", slog.String("error", err.Error()))
		}
	}
	return messaging.NewBreakerPublisher(nats.NewNatsPublisher(js), cbCfg), closeFn, nil
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
