package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadinessFileName = "/tmp/ready"
	defaultLivenessFileName  = "/tmp/live"
	defaultLivenessInterval  = 20 * time.Second
)

// PProfConfig controls the side server exposing net/http/pprof.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	return fmt.Sprintf("\n--- PProf ---\n  enabled: %t\n  address: %s\n", c.Enabled, c.Addr)
}

func (c *PProfConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("pprof is enabled but address is not configured")
	}
	return nil
}

// ShutdownConfig bounds how long servers may drain on exit.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

// Validate fills in the default timeout when none is set.
func (c *ShutdownConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative: %s", c.Timeout)
	}
	if c.Timeout == 0 {
		c.Timeout = defaultShutdownTimeout
	}
	return nil
}

// ProbesConfig configures file-based readiness and liveness probes for workers without an HTTP port.
type ProbesConfig struct {
	ReadinessFileName string        `koanf:"readinessfilename"`
	LivenessFileName  string        `koanf:"livenessfilename"`
	LivenessInterval  time.Duration `koanf:"livenessinterval"`
}

func (c *ProbesConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Probes ---\n")
	b.WriteString(fmt.Sprintf("  readinessfilename: %s\n", c.ReadinessFileName))
	b.WriteString(fmt.Sprintf("  livenessfilename: %s\n", c.LivenessFileName))
	b.WriteString(fmt.Sprintf("  livenessinterval: %s\n", c.LivenessInterval))
	return b.String()
}

// Validate fills in defaults for unset values.
func (c *ProbesConfig) Validate() error {
	if c.ReadinessFileName == "" {
		c.ReadinessFileName = defaultReadinessFileName
	}
	if c.LivenessFileName == "" {
		c.LivenessFileName = defaultLivenessFileName
	}
	if c.LivenessInterval <= 0 {
		c.LivenessInterval = defaultLivenessInterval
	}
	return nil
}
