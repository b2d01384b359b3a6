package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsPublisher publishes events to JetStream.
type NatsPublisher struct {
	js jetstream.JetStream
}

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js}
}

// Publish sends the event to its subject. Events that carry a message ID are published
// with it, so the stream drops duplicates inside its deduplication window.
func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("%w: %w", messaging.ErrEncodePayload, err)
	}
	var opts []jetstream.PublishOpt
	if d, ok := event.(messaging.Deduplicated); ok {
		opts = append(opts, jetstream.WithMsgID(d.MsgID()))
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data, opts...); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}
