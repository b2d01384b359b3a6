package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/gocheckout/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
log:
  level: debug
nats:
  url: nats://localhost:4222
  timeout: 5s
  stream: CHECKOUT
subscriber:
  stream: CHECKOUT
  subjects: [checkout.completed, shipment.requested]
  consumer: notifications
  batch: 10
  timeout: 2s
  interval: 1s
  workers: 2
`

func Test_Load(t *testing.T) {
	// given
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(testYAML), 0o600))
	t.Setenv("NOTIFICATION_SUBSCRIBER_WORKERS", "4")

	// when
	cfg, err := configloader.LoadWithOptions[*Config]("notification", configloader.Options{
		ConfigFile: cfgFile,
		EnvFile:    filepath.Join(dir, ".env"),
	})

	// then
	require.NoError(t, err)
	assert.True(t, cfg.Nats.Enabled)
	assert.Equal(t, []string{"checkout.completed", "shipment.requested"}, cfg.Subscriber.Subjects)
	assert.Equal(t, 4, cfg.Subscriber.Workers)
	assert.Equal(t, 2*time.Second, cfg.Subscriber.Timeout)
	assert.Equal(t, "/tmp/ready", cfg.Probes.ReadinessFileName)
	assert.Equal(t, 10*time.Second, cfg.Shutdown.Timeout)
}

func Test_Validate_missingSubscriber(t *testing.T) {
	// given
	cfg := &Config{}
	cfg.Nats.Url = "nats://localhost:4222"
	cfg.Nats.Timeout = time.Second
	cfg.Nats.Stream = "CHECKOUT"

	// when
	err := cfg.Validate()

	// then
	assert.ErrorContains(t, err, "stream is not configured")
}
