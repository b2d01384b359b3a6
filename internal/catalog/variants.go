package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clock returns the current time.
type Clock func() time.Time

// Option configures a Perishable product.
type Option func(*Perishable)

// WithClock sets the clock used to evaluate expiry.
func WithClock(clock Clock) Option {
	return func(p *Perishable) {
		p.clock = clock
	}
}

// Digital is a product that is neither shipped nor expires, e.g. a scratch card.
type Digital struct {
	item
}

// NewDigital creates a digital product.
func NewDigital(name string, price decimal.Decimal, stock int) (*Digital, error) {
	it, err := newItem(name, price, stock)
	if err != nil {
		return nil, err
	}
	return &Digital{item: it}, nil
}

func (d *Digital) Kind() Kind { return KindDigital }

func (d *Digital) IsAvailable(requested int) bool {
	return d.hasStock(requested)
}

// Boxed is a shippable product that never expires, e.g. a TV.
type Boxed struct {
	item
	weightKg decimal.Decimal
}

// NewBoxed creates a shippable product.
func NewBoxed(name string, price decimal.Decimal, stock int, weightKg decimal.Decimal) (*Boxed, error) {
	it, err := newItem(name, price, stock)
	if err != nil {
		return nil, err
	}
	if err := validateWeight(name, weightKg); err != nil {
		return nil, err
	}
	return &Boxed{item: it, weightKg: weightKg}, nil
}

func (b *Boxed) Kind() Kind                { return KindShippable }
func (b *Boxed) WeightKg() decimal.Decimal { return b.weightKg }

func (b *Boxed) IsAvailable(requested int) bool {
	return b.hasStock(requested)
}

// Perishable is a shippable product with an expiry date, e.g. cheese.
type Perishable struct {
	item
	weightKg decimal.Decimal
	expiry   time.Time
	clock    Clock
}

// NewPerishable creates a shippable product that expires after the given date.
func NewPerishable(name string, price decimal.Decimal, stock int, weightKg decimal.Decimal, expiry time.Time, opts ...Option) (*Perishable, error) {
	it, err := newItem(name, price, stock)
	if err != nil {
		return nil, err
	}
	if err := validateWeight(name, weightKg); err != nil {
		return nil, err
	}
	p := &Perishable{item: it, weightKg: weightKg, expiry: expiry, clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Perishable) Kind() Kind                { return KindPerishable }
func (p *Perishable) WeightKg() decimal.Decimal { return p.weightKg }
func (p *Perishable) ExpiryDate() time.Time     { return p.expiry }

// IsExpired reports whether today is strictly after the expiry date.
// Dates are compared by calendar day in the expiry date's location.
func (p *Perishable) IsExpired() bool {
	clock := p.clock
	if clock == nil {
		clock = time.Now
	}
	now := clock().In(p.expiry.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiry := time.Date(p.expiry.Year(), p.expiry.Month(), p.expiry.Day(), 0, 0, 0, 0, time.UTC)
	return today.After(expiry)
}

func (p *Perishable) IsAvailable(requested int) bool {
	return !p.IsExpired() && p.hasStock(requested)
}

var (
	_ Product   = (*Digital)(nil)
	_ Product   = (*Boxed)(nil)
	_ Shippable = (*Boxed)(nil)
	_ Product   = (*Perishable)(nil)
	_ Shippable = (*Perishable)(nil)
	_ Expirable = (*Perishable)(nil)
)
