package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/gocheckout/pkg/config"
	"github.com/abgdnv/gocheckout/pkg/config/configloader"
	"github.com/shopspring/decimal"
)

var _ configloader.Validator = (*Config)(nil)

const (
	defaultRatePerKg      = "10"
	defaultIdempotencyTTL = 24 * time.Hour
)

type Config struct {
	HTTPServer  config.HTTPConfig       `koanf:"server"`
	GRPC        config.GrpcServerConfig `koanf:"grpc"`
	Log         config.LogConfig        `koanf:"log"`
	PProf       config.PProfConfig      `koanf:"pprof"`
	Nats        config.NATSConfig       `koanf:"nats"`
	Shutdown    config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry   config.TelemetryConfig  `koanf:"telemetry"`
	Resilience  config.ResilienceConfig `koanf:"resilience"`
	Shipping    ShippingConfig          `koanf:"shipping"`
	Idempotency IdempotencyConfig       `koanf:"idempotency"`
	Seed        SeedConfig              `koanf:"seed"`
}

// ShippingConfig holds the shipping fee rate. Amounts are decimal strings.
type ShippingConfig struct {
	RatePerKg string `koanf:"rateperkg"`
}

// Rate returns the configured rate. Validate must have succeeded.
func (c *ShippingConfig) Rate() decimal.Decimal {
	return decimal.RequireFromString(c.RatePerKg)
}

func (c *ShippingConfig) Validate() error {
	if c.RatePerKg == "" {
		c.RatePerKg = defaultRatePerKg
	}
	rate, err := decimal.NewFromString(c.RatePerKg)
	if err != nil {
		return fmt.Errorf("invalid shipping rate per kg %q: %w", c.RatePerKg, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("shipping rate per kg must not be negative, got %s", rate)
	}
	return nil
}

// IdempotencyConfig controls how long checkout responses are kept for replay.
type IdempotencyConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

func (c *IdempotencyConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("idempotency ttl must not be negative: %s", c.TTL)
	}
	if c.TTL == 0 {
		c.TTL = defaultIdempotencyTTL
	}
	return nil
}

// SeedConfig lists catalog entries and customers created at startup.
type SeedConfig struct {
	Products  []ProductSeed  `koanf:"products"`
	Customers []CustomerSeed `koanf:"customers"`
}

type ProductSeed struct {
	Kind     string `koanf:"kind"`
	Name     string `koanf:"name"`
	Price    string `koanf:"price"`
	Stock    int    `koanf:"stock"`
	WeightKg string `koanf:"weightkg"`
	// Expiry is a date (2006-01-02). ExpiresInDays is relative to startup and is used when Expiry is empty.
	Expiry        string `koanf:"expiry"`
	ExpiresInDays int    `koanf:"expiresindays"`
}

type CustomerSeed struct {
	ID      string `koanf:"id"`
	Name    string `koanf:"name"`
	Balance string `koanf:"balance"`
}

func (c *SeedConfig) Validate() error {
	names := make(map[string]struct{}, len(c.Products))
	for i, p := range c.Products {
		if p.Name == "" {
			return fmt.Errorf("seed.products[%d]: name is not configured", i)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("seed.products[%d]: duplicate product name %q", i, p.Name)
		}
		names[p.Name] = struct{}{}
		if p.Expiry != "" {
			if _, err := time.Parse(time.DateOnly, p.Expiry); err != nil {
				return fmt.Errorf("seed.products[%d]: invalid expiry %q: %w", i, p.Expiry, err)
			}
		}
	}
	for i, cs := range c.Customers {
		if cs.Name == "" {
			return fmt.Errorf("seed.customers[%d]: name is not configured", i)
		}
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())

	b.WriteString("\n--- Checkout ---\n")
	b.WriteString(fmt.Sprintf("  shipping.rateperkg: %s\n", c.Shipping.RatePerKg))
	b.WriteString(fmt.Sprintf("  idempotency.ttl: %s\n", c.Idempotency.TTL))
	b.WriteString(fmt.Sprintf("  seed.products: %d\n", len(c.Seed.Products)))
	b.WriteString(fmt.Sprintf("  seed.customers: %d\n", len(c.Seed.Customers)))
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer, &c.GRPC, &c.Log, &c.PProf, &c.Nats, &c.Shutdown,
		&c.Telemetry, &c.Shipping, &c.Idempotency, &c.Seed,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if c.Nats.Enabled {
		if err := c.Resilience.Validate(); err != nil {
			return err
		}
	}
	return nil
}
