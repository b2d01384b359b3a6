// Package config holds the notification worker's configuration.
package config

import (
	"strings"

	"github.com/abgdnv/gocheckout/pkg/config"
	"github.com/abgdnv/gocheckout/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Subscriber config.SubscriberConfig `koanf:"subscriber"`
	Probes     config.ProbesConfig     `koanf:"probes"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Nats.String())
	b.WriteString(c.Subscriber.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Probes.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks the configuration. The worker cannot run without NATS, so
// the nats block is always treated as enabled.
func (c *Config) Validate() error {
	c.Nats.Enabled = true
	for _, v := range []configloader.Validator{&c.Log, &c.PProf, &c.Nats, &c.Subscriber, &c.Probes, &c.Shutdown} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
