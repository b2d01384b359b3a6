// Package customer holds the paying party of a checkout.
package customer

import (
	"fmt"

	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer has a name and a balance that only decreases.
type Customer struct {
	id      uuid.UUID
	name    string
	balance decimal.Decimal
}

// New creates a customer with a fresh ID.
func New(name string, balance decimal.Decimal) (*Customer, error) {
	return NewWithID(uuid.New(), name, balance)
}

// NewWithID creates a customer with a known ID, e.g. one seeded from configuration.
func NewWithID(id uuid.UUID, name string, balance decimal.Decimal) (*Customer, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("customer %s: id is required: %w", name, checkouterrors.ErrInvalidCustomer)
	}
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", checkouterrors.ErrInvalidCustomer)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("customer %s: balance %s is negative: %w", name, balance, checkouterrors.ErrInvalidCustomer)
	}
	return &Customer{id: id, name: name, balance: balance}, nil
}

func (c *Customer) ID() uuid.UUID            { return c.id }
func (c *Customer) Name() string             { return c.name }
func (c *Customer) Balance() decimal.Decimal { return c.balance }

// CanAfford reports whether amount can be debited. A balance equal to amount is enough.
func (c *Customer) CanAfford(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(c.balance)
}

// Debit subtracts amount from the balance.
// Returns ErrInsufficientBalance if amount exceeds the balance; the balance is then unchanged.
func (c *Customer) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit amount %s is negative: %w", amount, checkouterrors.ErrInvalidAmount)
	}
	if !c.CanAfford(amount) {
		return fmt.Errorf("customer %s. Balance: %s, Required: %s: %w", c.name, c.balance, amount, checkouterrors.ErrInsufficientBalance)
	}
	c.balance = c.balance.Sub(amount)
	return nil
}
