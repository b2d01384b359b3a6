// Package probes implements file-based readiness and liveness probes for workers that expose no HTTP port.
package probes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/abgdnv/gocheckout/pkg/config"
)

// MarkReady creates the readiness file. The returned function removes it.
func MarkReady(cfg config.ProbesConfig) (func(), error) {
	if err := os.WriteFile(cfg.ReadinessFileName, []byte("ready"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write readiness file: %w", err)
	}
	return func() { _ = os.Remove(cfg.ReadinessFileName) }, nil
}

// RunLiveness touches the liveness file every interval until ctx is done, then removes it.
func RunLiveness(ctx context.Context, cfg config.ProbesConfig, logger *slog.Logger) error {
	defer func() { _ = os.Remove(cfg.LivenessFileName) }()

	touch := func(now time.Time) {
		if err := os.WriteFile(cfg.LivenessFileName, []byte(now.UTC().Format(time.RFC3339)), 0o644); err != nil {
			logger.WarnContext(ctx, "failed to update liveness file", "error", err)
		}
	}
	touch(time.Now())

	ticker := time.NewTicker(cfg.LivenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			touch(now)
		}
	}
}
