// Package shipping computes shipping fees and dispatches shipment notices.
package shipping

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/abgdnv/gocheckout/internal/catalog"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/abgdnv/gocheckout/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// DefaultRatePerKg is the fee charged per kilogram when none is configured.
var DefaultRatePerKg = decimal.NewFromInt(10)

// Calculator prices and ships shipment units.
type Calculator struct {
	ratePerKg decimal.Decimal
	out       io.Writer
	publisher messaging.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithWriter sets where shipment notices are printed.
func WithWriter(w io.Writer) Option {
	return func(c *Calculator) { c.out = w }
}

// WithPublisher sets the publisher for ShipmentRequestedEvent.
func WithPublisher(p messaging.Publisher) Option {
	return func(c *Calculator) { c.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calculator) { c.logger = l }
}

// NewCalculator creates a Calculator. A zero rate ships for free; a negative rate is rejected.
func NewCalculator(ratePerKg decimal.Decimal, opts ...Option) (*Calculator, error) {
	if ratePerKg.IsNegative() {
		return nil, fmt.Errorf("shipping rate per kg must not be negative, got %s: %w", ratePerKg, checkouterrors.ErrInvalidAmount)
	}
	c := &Calculator{
		ratePerKg: ratePerKg,
		out:       io.Discard,
		publisher: messaging.NopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "shipping")
	return c, nil
}

// RatePerKg returns the configured rate.
func (c *Calculator) RatePerKg() decimal.Decimal {
	return c.ratePerKg
}

// CalculateFee returns the total weight of units times the rate. Empty input costs nothing.
func (c *Calculator) CalculateFee(units []catalog.Shippable) decimal.Decimal {
	return totalWeight(units).Mul(c.ratePerKg)
}

// Ship prints a shipment notice for units and publishes a ShipmentRequestedEvent.
// Nothing happens for an empty unit list. A publish failure is logged, not returned.
func (c *Calculator) Ship(ctx context.Context, orderID uuid.UUID, units []catalog.Shippable) (*Notice, error) {
	if len(units) == 0 {
		return nil, nil
	}
	notice := BuildNotice(units)
	if _, err := notice.WriteTo(c.out); err != nil {
		return notice, fmt.Errorf("failed to print shipment notice: %w", err)
	}

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.ShipmentRequestedEvent{
		Carrier:       carrier,
		OrderID:       orderID,
		Items:         make([]events.ShipmentItem, 0, len(notice.Groups)),
		TotalWeightKg: notice.TotalWeightKg,
		RequestedAt:   c.now().UTC(),
	}
	for _, g := range notice.Groups {
		event.Items = append(event.Items, events.ShipmentItem{Name: g.Name, Count: g.Count, WeightG: g.WeightG})
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish ShipmentRequestedEvent", "order_id", orderID, "error", err)
	}
	return notice, nil
}

func totalWeight(units []catalog.Shippable) decimal.Decimal {
	total := decimal.Zero
	for _, u := range units {
		total = total.Add(u.WeightKg())
	}
	return total
}
