package catalog

import (
	"fmt"
	"time"

	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/shopspring/decimal"
)

// Definition describes a product to be created by New.
type Definition struct {
	Kind     Kind
	Name     string
	Price    decimal.Decimal
	Stock    int
	WeightKg decimal.Decimal
	Expiry   time.Time
}

// New creates the variant selected by def.Kind.
func New(def Definition, opts ...Option) (Product, error) {
	switch def.Kind {
	case KindDigital:
		return NewDigital(def.Name, def.Price, def.Stock)
	case KindShippable:
		return NewBoxed(def.Name, def.Price, def.Stock, def.WeightKg)
	case KindPerishable:
		if def.Expiry.IsZero() {
			return nil, fmt.Errorf("product %s: expiry date is required: %w", def.Name, checkouterrors.ErrInvalidProduct)
		}
		return NewPerishable(def.Name, def.Price, def.Stock, def.WeightKg, def.Expiry, opts...)
	default:
		return nil, fmt.Errorf("unknown product kind %q: %w", def.Kind, checkouterrors.ErrInvalidProduct)
	}
}
