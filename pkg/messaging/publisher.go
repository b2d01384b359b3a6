// Package messaging defines the events emitted by the checkout service and the publisher contract.
package messaging

import (
	"context"
)

const (
	CheckoutCompletedSubject = "checkout.completed"
	ShipmentRequestedSubject = "shipment.requested"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Deduplicated is implemented by events with a stable identity. The broker uses MsgID
// to discard repeated publishes of the same event.
type Deduplicated interface {
	MsgID() string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
