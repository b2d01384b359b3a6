package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/abgdnv/gocheckout/internal/cart"
	"github.com/abgdnv/gocheckout/internal/catalog"
	"github.com/abgdnv/gocheckout/internal/customer"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/google/uuid"
)

// inMemoryProducts implements ProductStore using an in-memory map.
type inMemoryProducts struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
}

// NewInMemoryProductStore creates a new instance of ProductStore.
func NewInMemoryProductStore() ProductStore {
	return &inMemoryProducts{products: make(map[string]catalog.Product)}
}

func (s *inMemoryProducts) FindByName(name string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[name]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", name, checkouterrors.ErrProductNotFound)
	}
	return p, nil
}

func (s *inMemoryProducts) FindAll(offset, limit int) []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })

	if offset >= len(list) {
		return []catalog.Product{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

func (s *inMemoryProducts) Create(product catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.Name()]; exists {
		return fmt.Errorf("product %s: %w", product.Name(), checkouterrors.ErrProductExists)
	}
	s.products[product.Name()] = product
	return nil
}

// inMemoryCustomers implements CustomerStore using an in-memory map.
type inMemoryCustomers struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]*customer.Customer
}

// NewInMemoryCustomerStore creates a new instance of CustomerStore.
func NewInMemoryCustomerStore() CustomerStore {
	return &inMemoryCustomers{customers: make(map[uuid.UUID]*customer.Customer)}
}

func (s *inMemoryCustomers) FindByID(id uuid.UUID) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, checkouterrors.ErrCustomerNotFound)
	}
	return c, nil
}

func (s *inMemoryCustomers) Create(c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers[c.ID()] = c
	return nil
}

// inMemoryCarts implements CartStore using an in-memory map.
type inMemoryCarts struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*cart.Cart
}

// NewInMemoryCartStore creates a new instance of CartStore.
func NewInMemoryCartStore() CartStore {
	return &inMemoryCarts{carts: make(map[uuid.UUID]*cart.Cart)}
}

func (s *inMemoryCarts) FindByID(id uuid.UUID) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart %s: %w", id, checkouterrors.ErrCartNotFound)
	}
	return c, nil
}

func (s *inMemoryCarts) Create(c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[c.ID()] = c
	return nil
}
