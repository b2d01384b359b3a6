package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultSubscriberBatch    = 10
	defaultSubscriberTimeout  = 2 * time.Second
	defaultSubscriberInterval = time.Second
	defaultSubscriberWorkers  = 1
)

// SubscriberConfig describes a durable pull consumer. Each of Workers fetches up to Batch
// messages at a time, waiting at most Timeout, and pauses for Interval after a fetch error.
type SubscriberConfig struct {
	Stream   string        `koanf:"stream"`
	Subjects []string      `koanf:"subjects"`
	Consumer string        `koanf:"consumer"`
	Batch    int           `koanf:"batch"`
	Timeout  time.Duration `koanf:"timeout"`
	Interval time.Duration `koanf:"interval"`
	Workers  int           `koanf:"workers"`
}

func (c *SubscriberConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS Subscriber ---\n")
	fmt.Fprintf(&b, "  stream: %s\n", c.Stream)
	fmt.Fprintf(&b, "  subjects: %s\n", strings.Join(c.Subjects, ","))
	fmt.Fprintf(&b, "  consumer: %s\n", c.Consumer)
	fmt.Fprintf(&b, "  batch: %d, workers: %d\n", c.Batch, c.Workers)
	fmt.Fprintf(&b, "  timeout: %s, interval: %s\n", c.Timeout, c.Interval)
	return b.String()
}

// Validate requires the stream, subjects and consumer name and fills in defaults for the rest.
func (c *SubscriberConfig) Validate() error {
	switch {
	case c.Stream == "":
		return fmt.Errorf("subscriber: stream is not configured")
	case len(c.Subjects) == 0:
		return fmt.Errorf("subscriber: subjects are not configured")
	case c.Consumer == "":
		return fmt.Errorf("subscriber: consumer is not configured")
	case c.Batch < 0 || c.Workers < 0 || c.Timeout < 0 || c.Interval < 0:
		return fmt.Errorf("subscriber: batch, workers, timeout and interval must not be negative")
	}
	if c.Batch == 0 {
		c.Batch = defaultSubscriberBatch
	}
	if c.Timeout == 0 {
		c.Timeout = defaultSubscriberTimeout
	}
	if c.Interval == 0 {
		c.Interval = defaultSubscriberInterval
	}
	if c.Workers == 0 {
		c.Workers = defaultSubscriberWorkers
	}
	return nil
}
