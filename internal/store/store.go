// Package store provides storage for the checkout service's catalog, customers and carts.
package store

import (
	"github.com/abgdnv/gocheckout/internal/cart"
	"github.com/abgdnv/gocheckout/internal/catalog"
	"github.com/abgdnv/gocheckout/internal/customer"
	"github.com/google/uuid"
)

// ProductStore is an interface for product storage operations.
// Products are keyed by name, which is their catalog identity.
type ProductStore interface {
	// FindByName retrieves a single product by its name.
	// Returns ErrProductNotFound if no product exists with the given name.
	FindByName(name string) (catalog.Product, error)

	// FindAll returns a page of products ordered by name.
	// Returns an empty slice if the page is past the end.
	FindAll(offset, limit int) []catalog.Product

	// Create adds a new product.
	// Returns ErrProductExists if a product with the same name is already stored.
	Create(product catalog.Product) error
}

// CustomerStore is an interface for customer storage operations.
type CustomerStore interface {
	// FindByID returns ErrCustomerNotFound if no customer exists with the given ID.
	FindByID(id uuid.UUID) (*customer.Customer, error)
	Create(c *customer.Customer) error
}

// CartStore is an interface for cart storage operations.
type CartStore interface {
	// FindByID returns ErrCartNotFound if no cart exists with the given ID.
	FindByID(id uuid.UUID) (*cart.Cart, error)
	Create(c *cart.Cart) error
}
