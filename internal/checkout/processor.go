// Package checkout settles a cart against a customer's balance.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/abgdnv/gocheckout/internal/cart"
	"github.com/abgdnv/gocheckout/internal/catalog"
	"github.com/abgdnv/gocheckout/internal/customer"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/abgdnv/gocheckout/internal/shipping"
	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/abgdnv/gocheckout/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Shipper prices and dispatches shippable units.
type Shipper interface {
	CalculateFee(units []catalog.Shippable) decimal.Decimal
	Ship(ctx context.Context, orderID uuid.UUID, units []catalog.Shippable) (*shipping.Notice, error)
}

// Processor runs the checkout pipeline.
type Processor struct {
	shipper   Shipper
	out       io.Writer
	publisher messaging.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	completed metric.Int64Counter
	failed    metric.Int64Counter
	now       func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithWriter sets where receipts are printed.
func WithWriter(w io.Writer) Option {
	return func(p *Processor) { p.out = w }
}

// WithPublisher sets the publisher for CheckoutCompletedEvent.
func WithPublisher(pub messaging.Publisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithClock sets the time source for receipts.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a Processor. Metrics and traces go to the global OpenTelemetry providers.
func NewProcessor(shipper Shipper, opts ...Option) *Processor {
	meter := otel.Meter("checkout-service")
	completed, err := meter.Int64Counter("checkouts_completed", metric.WithDescription("Total number of completed checkouts"))
	if err != nil {
		panic(fmt.Sprintf("failed to create checkouts_completed counter: %v", err))
	}
	failed, err := meter.Int64Counter("checkouts_failed", metric.WithDescription("Total number of rejected checkouts"))
	if err != nil {
		panic(fmt.Sprintf("failed to create checkouts_failed counter: %v", err))
	}
	p := &Processor{
		shipper:   shipper,
		out:       io.Discard,
		publisher: messaging.NopPublisher{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("checkout-service"),
		completed: completed,
		failed:    failed,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "checkout")
	return p
}

// Checkout charges the customer for the cart, reduces stock, ships what is shippable,
// prints a receipt and clears the cart.
//
// All checks run before any mutation: a rejected checkout leaves the balance,
// every product's stock and the cart exactly as they were.
func (p *Processor) Checkout(ctx context.Context, cust *customer.Customer, c *cart.Cart) (receipt *Receipt, err error) {
	ctx, span := p.tracer.Start(ctx, "checkout.Checkout")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", failureReason(err))))
		}
	}()

	if c == nil || c.IsEmpty() {
		return nil, fmt.Errorf("cannot checkout: %w", checkouterrors.ErrEmptyCart)
	}
	if cust == nil {
		return nil, fmt.Errorf("customer is required: %w", checkouterrors.ErrInvalidCustomer)
	}

	lines := c.Lines()
	subtotal := c.Subtotal()
	units := c.ShipmentUnits()
	fee := p.shipper.CalculateFee(units)
	total := subtotal.Add(fee)

	if !cust.CanAfford(total) {
		return nil, fmt.Errorf("customer %s. Balance: %s, Required: %s: %w",
			cust.Name(), cust.Balance(), total, checkouterrors.ErrInsufficientBalance)
	}
	for _, l := range lines {
		if l.Quantity > l.Product.Stock() {
			return nil, fmt.Errorf("product %s. Available: %d, Requested: %d: %w",
				l.Product.Name(), l.Product.Stock(), l.Quantity, checkouterrors.ErrInsufficientStock)
		}
	}

	if err := cust.Debit(total); err != nil {
		return nil, err
	}
	for _, l := range lines {
		if err := l.Product.ReduceStock(l.Quantity); err != nil {
			return nil, err
		}
	}

	orderID := uuid.New()
	span.SetAttributes(attribute.String("order.id", orderID.String()))
	notice, err := p.shipper.Ship(ctx, orderID, units)
	if err != nil {
		p.logger.ErrorContext(ctx, "Shipment notice failed", "order_id", orderID, "error", err)
	}

	receipt = &Receipt{
		OrderID:      orderID,
		CustomerID:   cust.ID(),
		CustomerName: cust.Name(),
		Lines:        make([]ReceiptLine, 0, len(lines)),
		Subtotal:     subtotal,
		Shipping:     fee,
		Amount:       total,
		Balance:      cust.Balance(),
		Shipment:     notice,
		CompletedAt:  p.now().UTC(),
	}
	for _, l := range lines {
		receipt.Lines = append(receipt.Lines, ReceiptLine{Quantity: l.Quantity, Name: l.Product.Name(), Total: l.Total()})
	}
	if _, err := receipt.WriteTo(p.out); err != nil {
		p.logger.ErrorContext(ctx, "Failed to print receipt", "order_id", orderID, "error", err)
	}
	c.Clear()

	p.publishCompleted(ctx, receipt)
	p.completed.Add(ctx, 1)
	p.logger.InfoContext(ctx, "Checkout completed",
		slog.String("order_id", orderID.String()),
		slog.String("customer_id", cust.ID().String()),
		slog.String("amount", total.String()))

	return receipt, nil
}

func (p *Processor) publishCompleted(ctx context.Context, r *Receipt) {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.CheckoutCompletedEvent{
		Carrier:     carrier,
		OrderID:     r.OrderID,
		CustomerID:  r.CustomerID,
		Lines:       make([]events.CheckoutLine, 0, len(r.Lines)),
		Subtotal:    r.Subtotal,
		Shipping:    r.Shipping,
		Amount:      r.Amount,
		CompletedAt: r.CompletedAt,
	}
	for _, l := range r.Lines {
		event.Lines = append(event.Lines, events.CheckoutLine{Name: l.Name, Quantity: l.Quantity, Total: l.Total})
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish CheckoutCompletedEvent", "order_id", r.OrderID, "error", err)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, checkouterrors.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, checkouterrors.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, checkouterrors.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "other"
	}
}
