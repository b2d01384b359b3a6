// Package subscriber consumes checkout events from NATS JetStream and turns them into customer notifications.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/gocheckout/pkg/config"
	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/abgdnv/gocheckout/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
)

// ackableMsg is the part of jetstream.Msg the handler needs.
type ackableMsg interface {
	Subject() string
	Data() []byte
	Ack() error
	Term() error
}

// Start initializes the NATS JetStream consumer and starts multiple worker goroutines to process messages.
func Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig, logger *slog.Logger) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubjects: subscriberCfg.Subjects,
		Durable:        subscriberCfg.Consumer,
		AckPolicy:      jetstream.AckExplicitPolicy,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer %s on stream %s: %w", subscriberCfg.Consumer, subscriberCfg.Stream, err)
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < subscriberCfg.Workers; i++ {
		workerLogger := logger.With("component", "subscriber", "worker", i)
		g.Go(func() error {
			return runWorker(gCtx, consumer, subscriberCfg, workerLogger)
		})
	}
	return g.Wait()
}

// runWorker fetches messages from the NATS JetStream consumer and processes them.
func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.ErrorContext(ctx, "failed to fetch messages", "error", err)
				time.Sleep(cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				handleMessage(ctx, msg, logger)
			}
			if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) && ctx.Err() == nil {
				logger.WarnContext(ctx, "fetch batch ended with error", "error", err)
			}
		}
	}
}

// handleMessage decodes one event and emits the matching notification.
// Undecodable payloads are terminated so they are not redelivered; unknown subjects are acked and dropped.
func handleMessage(ctx context.Context, msg ackableMsg, logger *slog.Logger) {
	if msg == nil {
		logger.ErrorContext(ctx, "received nil message")
		return
	}
	var err error
	switch msg.Subject() {
	case messaging.CheckoutCompletedSubject:
		err = notifyReceipt(ctx, msg.Data(), logger)
	case messaging.ShipmentRequestedSubject:
		err = notifyShipment(ctx, msg.Data(), logger)
	default:
		logger.WarnContext(ctx, "dropping message with unknown subject", "subject", msg.Subject())
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to unmarshal message", "error", err, "subject", msg.Subject())
		if err := msg.Term(); err != nil {
			logger.ErrorContext(ctx, "failed to terminate message", "error", err)
		}
		return
	}
	if err := msg.Ack(); err != nil {
		logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}

func notifyReceipt(ctx context.Context, data []byte, logger *slog.Logger) error {
	var event events.CheckoutCompletedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, event.Carrier, "notification.receipt")
	defer span()

	logger.InfoContext(ctx, "receipt notification sent",
		slog.String("order_id", event.OrderID.String()),
		slog.String("customer_id", event.CustomerID.String()),
		slog.Int("lines", len(event.Lines)),
		slog.Int64("amount", event.Amount.IntPart()),
		slog.String("completed_at", event.CompletedAt.Format(time.RFC3339)))
	return nil
}

func notifyShipment(ctx context.Context, data []byte, logger *slog.Logger) error {
	var event events.ShipmentRequestedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, event.Carrier, "notification.shipment")
	defer span()

	items := make([]string, 0, len(event.Items))
	for _, it := range event.Items {
		items = append(items, fmt.Sprintf("%dx %s %dg", it.Count, it.Name, it.WeightG))
	}
	logger.InfoContext(ctx, "shipment notification sent",
		slog.String("order_id", event.OrderID.String()),
		slog.Any("items", items),
		slog.String("total_weight_kg", event.TotalWeightKg.String()))
	return nil
}

// startSpan continues the trace carried by the event.
func startSpan(ctx context.Context, carrier propagation.MapCarrier, name string) (context.Context, func()) {
	if carrier != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
	}
	ctx, span := otel.Tracer("notification-service").Start(ctx, name)
	return ctx, func() { span.End() }
}
