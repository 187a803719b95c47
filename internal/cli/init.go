// Package cli provides common CLI initialization utilities shared by
// cmd/flousi, cmd/flousi-worker and cmd/flousi-report.
package cli

import (
	"context"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flousi/internal/amqp"
	"flousi/internal/analytics"
	"flousi/internal/backend"
	"flousi/internal/cache"
	"flousi/internal/config"
	"flousi/internal/core"
	"flousi/internal/log"
	"flousi/internal/sheets/memory"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default. A nil cfg gives the defaults.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Component = component
	if cfg != nil {
		lc.Level = log.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// Bootstrap runs the common startup sequence: .env, config, logger.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := LoadAndValidateConfig(SetupLogger(nil, component))
	return cfg, SetupLogger(cfg, component)
}

// InitBackend opens the data source chosen by DATA_BACKEND.
// Exits the process on failure.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldError, err, log.FieldErrorType, log.ErrorTypeDatabase, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// LayoutFromConfig builds the donut layout. The canvas grows with the
// radius so the popped-out selected segment is never clipped.
func LayoutFromConfig(cfg *config.Config) analytics.Layout {
	l := analytics.DefaultLayout()
	l.OuterRadius = cfg.DonutOuterRadius
	l.InnerRadius = cfg.DonutInnerRadius
	l.GapDegrees = cfg.DonutGapDegrees
	l.SelectionOffset = cfg.DonutSelectionOffset
	l.SelectionScale = cfg.DonutSelectionScale

	base := analytics.DefaultLayout()
	l.Size = math.Max(base.Size*l.OuterRadius/base.OuterRadius, math.Ceil(2*(l.OuterRadius*l.SelectionScale+l.SelectionOffset))+4)
	return l.Normalize()
}

// NewAnalyticsService wires the fetcher with the static fallback, the
// breakdown cache and the configured layout. The cache is returned for
// invalidation metrics and cleanup.
func NewAnalyticsService(cfg *config.Config, fetcher analytics.Fetcher, logger *log.Logger) (*analytics.Service, *cache.LRUCache[[]core.CategoryTotal]) {
	c := cache.NewLRUCache[[]core.CategoryTotal](cfg.CacheSize, cfg.CacheTTL)
	svc := analytics.NewService(fetcher,
		analytics.WithFallback(memory.Fallback{}),
		analytics.WithCache(c),
		analytics.WithLayout(LayoutFromConfig(cfg)),
		analytics.WithLogger(logger),
	)
	return svc, c
}

// NewAMQPClient connects to the broker when AMQP_URL is set. It returns nil
// otherwise; callers pass the nil on as "messaging disabled".
func NewAMQPClient(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return nil
	}
	return client
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached", log.FieldOperation, log.OpShutdown)
		} else {
			logger.Info("Shutdown complete", log.FieldOperation, log.OpShutdown)
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
