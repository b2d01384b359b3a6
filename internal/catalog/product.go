// Package catalog models purchasable items and their optional capabilities.
package catalog

import (
	"fmt"
	"time"

	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/shopspring/decimal"
)

// Kind identifies a catalog variant.
type Kind string

const (
	KindDigital    Kind = "digital"
	KindShippable  Kind = "shippable"
	KindPerishable Kind = "perishable"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDigital, KindShippable, KindPerishable:
		return k, nil
	default:
		return "", fmt.Errorf("unknown product kind %q: %w", s, checkouterrors.ErrInvalidProduct)
	}
}

// Product is a catalog entry identified by its name.
type Product interface {
	Name() string
	UnitPrice() decimal.Decimal
	Stock() int
	Kind() Kind

	// IsAvailable reports whether the requested quantity can be sold right now.
	// Expired products are never available.
	IsAvailable(requested int) bool

	// ReduceStock decrements stock by quantity.
	// Returns ErrInsufficientStock if quantity exceeds the current stock.
	ReduceStock(quantity int) error

	// Restock increments stock by quantity.
	Restock(quantity int) error
}

// Shippable is implemented by products that have a physical weight.
type Shippable interface {
	Name() string
	WeightKg() decimal.Decimal
}

// Expirable is implemented by products with an expiry date.
type Expirable interface {
	ExpiryDate() time.Time
	IsExpired() bool
}

// SameEntry reports whether two products refer to the same catalog entry.
// Identity is the case-sensitive name; price, stock and variant are ignored.
func SameEntry(a, b Product) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Name() == b.Name()
}

// item holds the state shared by all variants.
type item struct {
	name  string
	price decimal.Decimal
	stock int
}

func newItem(name string, price decimal.Decimal, stock int) (item, error) {
	if name == "" {
		return item{}, fmt.Errorf("name is required: %w", checkouterrors.ErrInvalidProduct)
	}
	if price.IsNegative() {
		return item{}, fmt.Errorf("product %s: price %s is negative: %w", name, price, checkouterrors.ErrInvalidProduct)
	}
	if stock < 0 {
		return item{}, fmt.Errorf("product %s: stock %d is negative: %w", name, stock, checkouterrors.ErrInvalidProduct)
	}
	return item{name: name, price: price, stock: stock}, nil
}

func (i *item) Name() string               { return i.name }
func (i *item) UnitPrice() decimal.Decimal { return i.price }
func (i *item) Stock() int                 { return i.stock }

func (i *item) hasStock(requested int) bool {
	return requested <= i.stock
}

func (i *item) ReduceStock(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("product %s: cannot reduce stock by %d: %w", i.name, quantity, checkouterrors.ErrInvalidAmount)
	}
	if quantity > i.stock {
		return fmt.Errorf("product %s. Available: %d, Requested: %d: %w", i.name, i.stock, quantity, checkouterrors.ErrInsufficientStock)
	}
	i.stock -= quantity
	return nil
}

func (i *item) Restock(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("product %s: restock amount must be positive, got %d: %w", i.name, quantity, checkouterrors.ErrInvalidAmount)
	}
	i.stock += quantity
	return nil
}

func validateWeight(name string, weightKg decimal.Decimal) error {
	if weightKg.IsNegative() {
		return fmt.Errorf("product %s: weight %s is negative: %w", name, weightKg, checkouterrors.ErrInvalidProduct)
	}
	return nil
}
