// Package events holds the payloads published by the checkout service.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/propagation"
)

type CheckoutLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

type CheckoutCompletedEvent struct {
	Carrier     propagation.MapCarrier `json:"carrier,omitempty"`
	OrderID     uuid.UUID              `json:"order_id"`
	CustomerID  uuid.UUID              `json:"customer_id"`
	Lines       []CheckoutLine         `json:"lines"`
	Subtotal    decimal.Decimal        `json:"subtotal"`
	Shipping    decimal.Decimal        `json:"shipping"`
	Amount      decimal.Decimal        `json:"amount"`
	CompletedAt time.Time              `json:"completed_at"`
}

func (e CheckoutCompletedEvent) Subject() string {
	return messaging.CheckoutCompletedSubject
}

func (e CheckoutCompletedEvent) MsgID() string {
	return e.Subject() + ":" + e.OrderID.String()
}

func (e CheckoutCompletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ShipmentItem struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	WeightG int64  `json:"weight_g"`
}

type ShipmentRequestedEvent struct {
	Carrier       propagation.MapCarrier `json:"carrier,omitempty"`
	OrderID       uuid.UUID              `json:"order_id"`
	Items         []ShipmentItem         `json:"items"`
	TotalWeightKg decimal.Decimal        `json:"total_weight_kg"`
	RequestedAt   time.Time              `json:"requested_at"`
}

func (e ShipmentRequestedEvent) Subject() string {
	return messaging.ShipmentRequestedSubject
}

func (e ShipmentRequestedEvent) MsgID() string {
	return e.Subject() + ":" + e.OrderID.String()
}

func (e ShipmentRequestedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
