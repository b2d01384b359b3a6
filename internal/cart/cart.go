// Package cart aggregates the products a customer intends to buy.
package cart

import (
	"fmt"

	"github.com/abgdnv/gocheckout/internal/catalog"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line pairs a catalog product with a requested quantity.
// The product is shared with the catalog; the cart never changes its price or metadata.
type Line struct {
	Product  catalog.Product
	Quantity int
}

// Total returns unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Product.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps at most one line per product name, in insertion order.
type Cart struct {
	id    uuid.UUID
	owner uuid.UUID
	lines []Line
	index map[string]int // product name -> position in lines
}

// New creates an empty cart owned by the given customer.
func New(owner uuid.UUID) *Cart {
	return &Cart{
		id:    uuid.New(),
		owner: owner,
		index: make(map[string]int),
	}
}

func (c *Cart) ID() uuid.UUID    { return c.id }
func (c *Cart) Owner() uuid.UUID { return c.owner }

// Add validates the request against the product and merges it into the cart.
// The merged quantity of a line never exceeds the product's stock at add time.
func (c *Cart) Add(product catalog.Product, quantity int) error {
	if product == nil {
		return fmt.Errorf("product is required: %w", checkouterrors.ErrInvalidItem)
	}
	if quantity <= 0 {
		return fmt.Errorf("product %s: quantity must be positive, got %d: %w", product.Name(), quantity, checkouterrors.ErrInvalidItem)
	}
	if exp, ok := product.(catalog.Expirable); ok && exp.IsExpired() {
		return fmt.Errorf("product %s expired on %s: %w", product.Name(), exp.ExpiryDate().Format("2006-01-02"), checkouterrors.ErrInvalidItem)
	}
	inCart := c.Quantity(product.Name())
	if !product.IsAvailable(inCart + quantity) {
		return fmt.Errorf("product %s is out of stock. Available: %d, Requested: %d, In cart: %d: %w",
			product.Name(), product.Stock(), quantity, inCart, checkouterrors.ErrInvalidItem)
	}

	if pos, ok := c.index[product.Name()]; ok {
		c.lines[pos].Quantity += quantity
		return nil
	}
	c.index[product.Name()] = len(c.lines)
	c.lines = append(c.lines, Line{Product: product, Quantity: quantity})
	return nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Quantity returns the quantity for the named product, or zero.
func (c *Cart) Quantity(name string) int {
	if pos, ok := c.index[name]; ok {
		return c.lines[pos].Quantity
	}
	return 0
}

// Subtotal is the sum of every line total.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range c.lines {
		subtotal = subtotal.Add(l.Total())
	}
	return subtotal
}

// ShipmentUnits expands every shippable line into one unit per quantity,
// following line order.
func (c *Cart) ShipmentUnits() []catalog.Shippable {
	var units []catalog.Shippable
	for _, l := range c.lines {
		s, ok := l.Product.(catalog.Shippable)
		if !ok {
			continue
		}
		for range l.Quantity {
			units = append(units, s)
		}
	}
	return units
}

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Clear discards all lines.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]int)
}
