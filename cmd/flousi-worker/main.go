package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"flousi/internal/backend"
	"flousi/internal/cli"
	"flousi/internal/log"
	"flousi/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting flousi-worker", log.FieldOperation, log.OpStartup, "backend", cfg.DataBackend)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	data := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := data.Close(); err != nil {
			logger.Error("Backend close error", log.FieldError, err)
		}
	}()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	writer, err := backend.NewFactory(logger).CreateSnapshotWriter(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize snapshot writer", log.FieldError, err)
		os.Exit(1)
	}

	svc, _ := cli.NewAnalyticsService(cfg, data.Backend, logger)
	w := worker.NewSnapshotWorker(svc, writer, data.Backend, logger)

	// Catch up on anything missed while the worker was down.
	if err := w.RefreshAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Startup snapshot refresh failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if client := cli.NewAMQPClient(logger, cfg); client != nil {
		defer client.Close()
		g.Go(func() error {
			return client.ConsumeDataChanged(gctx, w.HandleDataChanged)
		})
	} else {
		logger.Info("Skipping message consumption, periodic refresh only", "interval", cfg.SnapshotInterval)
	}

	g.Go(func() error {
		return w.Run(gctx, cfg.SnapshotInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped gracefully")
}
