// Package app contains the application setup for the checkout service.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/gocheckout/internal/checkout"
	"github.com/abgdnv/gocheckout/internal/config"
	"github.com/abgdnv/gocheckout/internal/customer"
	"github.com/abgdnv/gocheckout/internal/idempotency"
	"github.com/abgdnv/gocheckout/internal/service"
	"github.com/abgdnv/gocheckout/internal/shipping"
	"github.com/abgdnv/gocheckout/internal/store"
	"github.com/abgdnv/gocheckout/internal/transport/rest"
	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/abgdnv/gocheckout/pkg/metrics"
	"github.com/abgdnv/gocheckout/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const serviceName = "checkout"

type Dependencies struct {
	CheckoutService service.CheckoutService
	Stores          service.Stores
	Registry        *prometheus.Registry
	Logger          *slog.Logger
}

// SetupDependencies wires the in-memory stores, the shipping calculator and the checkout
// processor, then seeds the catalog and customers from cfg. Receipts and shipment
// notices are printed to out.
func SetupDependencies(ctx context.Context, cfg *config.Config, reg *prometheus.Registry, publisher messaging.Publisher, out io.Writer, logger *slog.Logger) (*Dependencies, error) {
	calculator, err := shipping.NewCalculator(cfg.Shipping.Rate(),
		shipping.WithWriter(out),
		shipping.WithPublisher(publisher),
		shipping.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create shipping calculator: %w", err)
	}
	processor := checkout.NewProcessor(calculator,
		checkout.WithWriter(out),
		checkout.WithPublisher(publisher),
		checkout.WithLogger(logger))

	stores := service.Stores{
		Products:  store.NewInMemoryProductStore(),
		Customers: store.NewInMemoryCustomerStore(),
		Carts:     store.NewInMemoryCartStore(),
	}
	svc := service.NewService(stores, processor, calculator, idempotency.NewStore[*checkout.Receipt](cfg.Idempotency.TTL), logger)

	if err := seed(ctx, svc, stores, cfg.Seed, logger); err != nil {
		return nil, fmt.Errorf("failed to seed: %w", err)
	}

	return &Dependencies{
		CheckoutService: svc,
		Stores:          stores,
		Registry:        reg,
		Logger:          logger,
	}, nil
}

// SetupHttpHandler initializes the router, middleware and routes for the checkout service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	serverMetrics := metrics.NewServerMetrics(serviceName, deps.Registry)
	mux := server.NewChiRouter(deps.Logger, serverMetrics.Middleware)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the checkout service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.CheckoutService, deps.Logger)
	handler.RegisterRoutes(mux)
	mux.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))
}

// SetupHttpServer creates and configures an HTTP server for the checkout service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, serviceName, mux)
}

// SetupGrpcServer initializes the gRPC server, which serves the standard health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) (*grpc.Server, *health.Server) {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled)
}

func seed(ctx context.Context, svc service.CheckoutService, stores service.Stores, cfg config.SeedConfig, logger *slog.Logger) error {
	for _, p := range cfg.Products {
		dto, err := toProductCreateDto(p, time.Now())
		if err != nil {
			return err
		}
		if _, err := svc.CreateProduct(ctx, dto); err != nil {
			return err
		}
	}
	for _, cs := range cfg.Customers {
		c, err := toCustomer(cs)
		if err != nil {
			return err
		}
		if err := stores.Customers.Create(c); err != nil {
			return err
		}
		logger.InfoContext(ctx, "Seeded customer", slog.String("ID", c.ID().String()), slog.String("name", c.Name()))
	}
	if len(cfg.Products) > 0 || len(cfg.Customers) > 0 {
		logger.InfoContext(ctx, "Seed completed", "products", len(cfg.Products), "customers", len(cfg.Customers))
	}
	return nil
}

func toProductCreateDto(p config.ProductSeed, now time.Time) (service.ProductCreateDto, error) {
	price, err := parseAmount(p.Price)
	if err != nil {
		return service.ProductCreateDto{}, fmt.Errorf("product %s: price: %w", p.Name, err)
	}
	weight, err := parseAmount(p.WeightKg)
	if err != nil {
		return service.ProductCreateDto{}, fmt.Errorf("product %s: weight: %w", p.Name, err)
	}
	expiry := p.Expiry
	if expiry == "" && p.ExpiresInDays != 0 {
		expiry = now.AddDate(0, 0, p.ExpiresInDays).Format(time.DateOnly)
	}
	return service.ProductCreateDto{
		Kind:     p.Kind,
		Name:     p.Name,
		Price:    price,
		Stock:    p.Stock,
		WeightKg: weight,
		Expiry:   expiry,
	}, nil
}

func toCustomer(cs config.CustomerSeed) (*customer.Customer, error) {
	balance, err := parseAmount(cs.Balance)
	if err != nil {
		return nil, fmt.Errorf("customer %s: balance: %w", cs.Name, err)
	}
	if cs.ID == "" {
		return customer.New(cs.Name, balance)
	}
	id, err := uuid.Parse(cs.ID)
	if err != nil {
		return nil, fmt.Errorf("customer %s: invalid id %q: %w", cs.Name, cs.ID, err)
	}
	return customer.NewWithID(id, cs.Name, balance)
}

// parseAmount parses a decimal string; empty means zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
