// Package main runs the notification worker, which turns checkout events into customer notifications.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/gocheckout/internal/notification/config"
	"github.com/abgdnv/gocheckout/internal/notification/probes"
	"github.com/abgdnv/gocheckout/internal/notification/subscriber"
	"github.com/abgdnv/gocheckout/pkg/bootstrap"
	"github.com/abgdnv/gocheckout/pkg/config/configloader"
	"github.com/abgdnv/gocheckout/pkg/messaging"
	"github.com/abgdnv/gocheckout/pkg/nats"
	"golang.org/x/sync/errgroup"
)

const serviceName = "notification"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, starts the NATS subscriber, and optionally starts the pprof server if enabled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level, os.Stdout)
	slog.SetDefault(logger)

	natsConn, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create NATS connection: %w", err)
	}
	defer natsConn.Close()
	js, err := nats.NewJetStreamContext(natsConn)
	if err != nil {
		return fmt.Errorf("failed to get JetStream context: %w", err)
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Nats.Timeout)
	defer cancel()
	subjects := []string{messaging.CheckoutCompletedSubject, messaging.ShipmentRequestedSubject}
	if _, err := nats.EnsureStream(streamCtx, js, cfg.Subscriber.Stream, subjects); err != nil {
		return err
	}

	removeReady, err := probes.MarkReady(cfg.Probes)
	if err != nil {
		return err
	}
	defer removeReady()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("NATS subscriber started")
		err := subscriber.Start(gCtx, js, cfg.Subscriber, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("subscriber failed", "error", err)
			return err
		}
		logger.Info("subscriber stopped gracefully.")
		return nil
	})

	g.Go(func() error {
		return probes.RunLiveness(gCtx, cfg.Probes, logger)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		pprofServer := &http.Server{
			Addr: cfg.PProf.Addr,
		}
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("errgroup encountered an error: %w", err)
		}
	}

	return nil
}
