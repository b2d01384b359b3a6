// Package service provides the checkout service's use cases over the in-memory catalog,
// customers and carts.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/gocheckout/internal/cart"
	"github.com/abgdnv/gocheckout/internal/catalog"
	"github.com/abgdnv/gocheckout/internal/checkout"
	"github.com/abgdnv/gocheckout/internal/customer"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/abgdnv/gocheckout/internal/idempotency"
	"github.com/abgdnv/gocheckout/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutService defines the operations exposed by the checkout service.
type CheckoutService interface {
	// CreateProduct adds a product to the catalog.
	// Returns ErrInvalidProduct for invalid data and ErrProductExists for a duplicate name.
	CreateProduct(ctx context.Context, dto ProductCreateDto) (*ProductDto, error)

	// FindProduct returns ErrProductNotFound if no product has the given name.
	FindProduct(ctx context.Context, name string) (*ProductDto, error)

	// FindAllProducts returns a page of products ordered by name.
	FindAllProducts(ctx context.Context, offset, limit int) ([]ProductDto, error)

	// Restock adds amount units to a product's stock.
	Restock(ctx context.Context, name string, amount int) (*ProductDto, error)

	CreateCustomer(ctx context.Context, dto CustomerCreateDto) (*CustomerDto, error)

	// FindCustomer returns ErrCustomerNotFound if no customer has the given ID.
	FindCustomer(ctx context.Context, id uuid.UUID) (*CustomerDto, error)

	// CreateCart opens an empty cart owned by the customer.
	CreateCart(ctx context.Context, customerID uuid.UUID) (*CartDto, error)

	// FindCart returns ErrAccessDenied if the cart belongs to another customer.
	FindCart(ctx context.Context, customerID, cartID uuid.UUID) (*CartDto, error)

	// AddItem adds quantity units of the named product to the cart.
	// Returns ErrInvalidItem if the product is expired or short of stock.
	AddItem(ctx context.Context, customerID, cartID uuid.UUID, dto AddItemDto) (*CartDto, error)

	// Checkout settles the cart. With a non-empty idempotency key a repeated call
	// replays the first successful result.
	Checkout(ctx context.Context, customerID, cartID uuid.UUID, idempotencyKey string) (*CheckoutResult, error)
}

// Checkouter runs the checkout pipeline for one cart.
type Checkouter interface {
	Checkout(ctx context.Context, cust *customer.Customer, c *cart.Cart) (*checkout.Receipt, error)
}

// FeeCalculator prices shipment units.
type FeeCalculator interface {
	CalculateFee(units []catalog.Shippable) decimal.Decimal
}

// Stores groups the storage backends used by Service.
type Stores struct {
	Products  store.ProductStore
	Customers store.CustomerStore
	Carts     store.CartStore
}

// Service implements CheckoutService.
//
// A single lock guards stock, balances and cart lines: reads share it, while
// cart changes and checkouts hold it exclusively, so a checkout's debit and
// stock reduction form one critical section.
type Service struct {
	mu          sync.RWMutex
	stores      Stores
	processor   Checkouter
	fees        FeeCalculator
	idempotency *idempotency.Store[*checkout.Receipt]
	clock       catalog.Clock
	logger      *slog.Logger
}

// NewService creates a new instance of Service. idem may be nil to disable idempotency keys.
func NewService(stores Stores, processor Checkouter, fees FeeCalculator, idem *idempotency.Store[*checkout.Receipt], logger *slog.Logger) *Service {
	return &Service{
		stores:      stores,
		processor:   processor,
		fees:        fees,
		idempotency: idem,
		clock:       time.Now,
		logger:      logger.With("component", "service"),
	}
}

// CreateProduct validates the definition and stores a new catalog product.
func (s *Service) CreateProduct(_ context.Context, dto ProductCreateDto) (*ProductDto, error) {
	kind, err := catalog.ParseKind(dto.Kind)
	if err != nil {
		return nil, err
	}
	def := catalog.Definition{
		Kind:     kind,
		Name:     dto.Name,
		Price:    dto.Price,
		Stock:    dto.Stock,
		WeightKg: dto.WeightKg,
	}
	if dto.Expiry != "" {
		expiry, err := time.Parse(time.DateOnly, dto.Expiry)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid expiry %q: %w", dto.Name, dto.Expiry, checkouterrors.ErrInvalidProduct)
		}
		def.Expiry = expiry
	}
	p, err := catalog.New(def, catalog.WithClock(s.clock))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.stores.Products.Create(p); err != nil {
		return nil, err
	}
	return toProductDto(p), nil
}

func (s *Service) FindProduct(_ context.Context, name string) (*ProductDto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.stores.Products.FindByName(name)
	if err != nil {
		return nil, err
	}
	return toProductDto(p), nil
}

func (s *Service) FindAllProducts(_ context.Context, offset, limit int) ([]ProductDto, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("offset %d, limit %d must not be negative: %w", offset, limit, checkouterrors.ErrInvalidAmount)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := s.stores.Products.FindAll(offset, limit)
	list := make([]ProductDto, len(products))
	for i, p := range products {
		list[i] = *toProductDto(p)
	}
	return list, nil
}

func (s *Service) Restock(ctx context.Context, name string, amount int) (*ProductDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.stores.Products.FindByName(name)
	if err != nil {
		return nil, err
	}
	if err := p.Restock(amount); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Product restocked", "name", name, "amount", amount, "stock", p.Stock())
	return toProductDto(p), nil
}

func (s *Service) CreateCustomer(_ context.Context, dto CustomerCreateDto) (*CustomerDto, error) {
	c, err := customer.New(dto.Name, dto.Balance)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.stores.Customers.Create(c); err != nil {
		return nil, err
	}
	return toCustomerDto(c), nil
}

func (s *Service) FindCustomer(_ context.Context, id uuid.UUID) (*CustomerDto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.stores.Customers.FindByID(id)
	if err != nil {
		return nil, err
	}
	return toCustomerDto(c), nil
}

func (s *Service) CreateCart(_ context.Context, customerID uuid.UUID) (*CartDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.stores.Customers.FindByID(customerID); err != nil {
		return nil, err
	}
	c := cart.New(customerID)
	if err := s.stores.Carts.Create(c); err != nil {
		return nil, err
	}
	return s.cartDto(c), nil
}

func (s *Service) FindCart(_ context.Context, customerID, cartID uuid.UUID) (*CartDto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.ownedCart(customerID, cartID)
	if err != nil {
		return nil, err
	}
	return s.cartDto(c), nil
}

func (s *Service) AddItem(ctx context.Context, customerID, cartID uuid.UUID, dto AddItemDto) (*CartDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.ownedCart(customerID, cartID)
	if err != nil {
		return nil, err
	}
	p, err := s.stores.Products.FindByName(dto.Name)
	if err != nil {
		return nil, err
	}
	if err := c.Add(p, dto.Quantity); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Item added to cart", "cart_id", cartID, "name", dto.Name, "quantity", dto.Quantity)
	return s.cartDto(c), nil
}

// Checkout settles the cart owned by customerID.
//
// Idempotency keys are scoped per customer and cart. A key whose first attempt is still
// running yields ErrCheckoutInProgress; a key whose attempt failed may be retried.
func (s *Service) Checkout(ctx context.Context, customerID, cartID uuid.UUID, idempotencyKey string) (*CheckoutResult, error) {
	if idempotencyKey == "" || s.idempotency == nil {
		receipt, err := s.checkout(ctx, customerID, cartID)
		if err != nil {
			return nil, err
		}
		return &CheckoutResult{Receipt: receipt}, nil
	}

	key := idempotencyScope(customerID, cartID, idempotencyKey)
	created, err := s.idempotency.CreateIfNotExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !created {
		if rec := s.idempotency.Get(ctx, key); rec != nil && rec.Status == idempotency.StatusDone {
			s.logger.InfoContext(ctx, "Replaying checkout", "cart_id", cartID, "order_id", rec.Response.OrderID)
			return &CheckoutResult{Receipt: rec.Response, Replayed: true}, nil
		}
		return nil, checkouterrors.ErrCheckoutInProgress
	}

	receipt, err := s.checkout(ctx, customerID, cartID)
	if err != nil {
		if markErr := s.idempotency.MarkFailed(ctx, key, err.Error()); markErr != nil {
			s.logger.WarnContext(ctx, "Failed to mark idempotency key failed", "error", markErr)
		}
		return nil, err
	}
	if markErr := s.idempotency.MarkDone(ctx, key, receipt); markErr != nil {
		s.logger.WarnContext(ctx, "Failed to mark idempotency key done", "error", markErr)
	}
	return &CheckoutResult{Receipt: receipt}, nil
}

func (s *Service) checkout(ctx context.Context, customerID, cartID uuid.UUID) (*checkout.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.ownedCart(customerID, cartID)
	if err != nil {
		return nil, err
	}
	cust, err := s.stores.Customers.FindByID(customerID)
	if err != nil {
		return nil, err
	}
	return s.processor.Checkout(ctx, cust, c)
}

func idempotencyScope(customerID, cartID uuid.UUID, key string) string {
	return customerID.String() + ":" + cartID.String() + ":" + key
}

// ownedCart loads a cart and checks that customerID owns it. Callers hold s.mu.
func (s *Service) ownedCart(customerID, cartID uuid.UUID) (*cart.Cart, error) {
	c, err := s.stores.Carts.FindByID(cartID)
	if err != nil {
		return nil, err
	}
	if c.Owner() != customerID {
		return nil, fmt.Errorf("cart %s: %w", cartID, checkouterrors.ErrAccessDenied)
	}
	return c, nil
}

func (s *Service) cartDto(c *cart.Cart) *CartDto {
	return toCartDto(c, s.fees.CalculateFee(c.ShipmentUnits()))
}

// IsClientError reports whether err was caused by the request rather than the service.
func IsClientError(err error) bool {
	for _, target := range []error{
		checkouterrors.ErrInvalidItem, checkouterrors.ErrEmptyCart, checkouterrors.ErrInvalidProduct,
		checkouterrors.ErrInvalidCustomer, checkouterrors.ErrInvalidAmount,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
