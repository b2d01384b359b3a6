package service

import (
	"time"

	"github.com/abgdnv/gocheckout/internal/cart"
	"github.com/abgdnv/gocheckout/internal/catalog"
	"github.com/abgdnv/gocheckout/internal/checkout"
	"github.com/abgdnv/gocheckout/internal/customer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDto represents the data transfer object for a catalog product.
type ProductDto struct {
	Name      string           `json:"name"`
	Kind      string           `json:"kind"`
	Price     decimal.Decimal  `json:"price"`
	Stock     int              `json:"stock"`
	WeightKg  *decimal.Decimal `json:"weight_kg,omitempty"`
	Expiry    string           `json:"expiry,omitempty"`
	Expired   bool             `json:"expired,omitempty"`
	Available bool             `json:"available"`
}

// ProductCreateDto represents the data transfer object for creating a product.
// Expiry is a date (2006-01-02) and is required for perishable products.
type ProductCreateDto struct {
	Kind     string          `json:"kind" validate:"required,oneof=digital shippable perishable"`
	Name     string          `json:"name" validate:"required,max=100"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock" validate:"min=0"`
	WeightKg decimal.Decimal `json:"weight_kg"`
	Expiry   string          `json:"expiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// RestockDto represents a request to add stock to a product.
type RestockDto struct {
	Amount int `json:"amount" validate:"required,min=1"`
}

// CustomerDto represents the data transfer object for a customer.
type CustomerDto struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// CustomerCreateDto represents the data transfer object for creating a customer.
type CustomerCreateDto struct {
	Name    string          `json:"name" validate:"required,max=100"`
	Balance decimal.Decimal `json:"balance"`
}

// CartDto represents a cart with its derived totals. Shipping is the fee the
// cart would be charged if checked out now.
type CartDto struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Lines      []CartLineDto   `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
}

type CartLineDto struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// AddItemDto represents a request to add a product to a cart.
type AddItemDto struct {
	Name     string `json:"name" validate:"required,max=100"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CheckoutResult wraps a receipt. Replayed is set when the receipt comes from an
// earlier request with the same idempotency key.
type CheckoutResult struct {
	Receipt  *checkout.Receipt
	Replayed bool
}

func toProductDto(p catalog.Product) *ProductDto {
	dto := &ProductDto{
		Name:      p.Name(),
		Kind:      string(p.Kind()),
		Price:     p.UnitPrice(),
		Stock:     p.Stock(),
		Available: p.IsAvailable(1),
	}
	if s, ok := p.(catalog.Shippable); ok {
		w := s.WeightKg()
		dto.WeightKg = &w
	}
	if e, ok := p.(catalog.Expirable); ok {
		dto.Expiry = e.ExpiryDate().Format(time.DateOnly)
		dto.Expired = e.IsExpired()
	}
	return dto
}

func toCustomerDto(c *customer.Customer) *CustomerDto {
	return &CustomerDto{ID: c.ID(), Name: c.Name(), Balance: c.Balance()}
}

func toCartDto(c *cart.Cart, shipping decimal.Decimal) *CartDto {
	lines := c.Lines()
	dto := &CartDto{
		ID:         c.ID(),
		CustomerID: c.Owner(),
		Lines:      make([]CartLineDto, 0, len(lines)),
		Subtotal:   c.Subtotal(),
		Shipping:   shipping,
	}
	for _, l := range lines {
		dto.Lines = append(dto.Lines, CartLineDto{
			Name:      l.Product.Name(),
			Quantity:  l.Quantity,
			UnitPrice: l.Product.UnitPrice(),
			Total:     l.Total(),
		})
	}
	dto.Total = dto.Subtotal.Add(dto.Shipping)
	return dto
}
