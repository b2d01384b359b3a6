package config

import (
	"fmt"
	"time"
)

const (
	defaultConsecutiveFailures = 5
	defaultErrorRatePercent    = 50
	defaultOpenTimeout         = 30 * time.Second
)

// ResilienceConfig guards calls to the message broker.
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// CircuitBreakerConfig opens the breaker after more than ConsecutiveFailures failures in a row,
// or once the failure ratio exceeds ErrorRatePercent. OpenTimeout is how long it stays open.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *ResilienceConfig) String() string {
	cb := c.CircuitBreaker
	return fmt.Sprintf("\n--- Circuit Breaker ---\n  consecutivefailures: %d\n  errorratepercent: %d\n  opentimeout: %s\n",
		cb.ConsecutiveFailures, cb.ErrorRatePercent, cb.OpenTimeout)
}

// Validate fills in defaults for unset values and rejects out of range ones.
func (c *ResilienceConfig) Validate() error {
	cb := &c.CircuitBreaker
	if cb.ConsecutiveFailures == 0 {
		cb.ConsecutiveFailures = defaultConsecutiveFailures
	}
	if cb.ErrorRatePercent == 0 {
		cb.ErrorRatePercent = defaultErrorRatePercent
	}
	if cb.OpenTimeout == 0 {
		cb.OpenTimeout = defaultOpenTimeout
	}
	if cb.ErrorRatePercent < 0 || cb.ErrorRatePercent > 100 {
		return fmt.Errorf("circuitbreaker.errorratepercent must be between 0 and 100, got %d", cb.ErrorRatePercent)
	}
	if cb.OpenTimeout < 0 {
		return fmt.Errorf("circuitbreaker.opentimeout must not be negative, got %s", cb.OpenTimeout)
	}
	return nil
}
