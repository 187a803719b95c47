package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"flousi/internal/cli"
	apphttp "flousi/internal/http"
	"flousi/internal/i18n"
	"flousi/internal/log"
	"flousi/internal/render"
	"flousi/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)
	logger.Info("Starting flousi server", log.FieldOperation, log.OpStartup, "backend", cfg.DataBackend)

	ctx := context.Background()
	data := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := data.Close(); err != nil {
			logger.Error("Backend close error", log.FieldError, err)
		}
	}()

	svc, dataCache := cli.NewAnalyticsService(cfg, data.Backend, logger)

	renderer, err := render.New()
	if err != nil {
		logger.Error("Failed to parse templates", log.FieldError, err)
		os.Exit(1)
	}

	deps := apphttp.Dependencies{
		Analytics:          svc,
		Renderer:           renderer,
		Ping:               data.Ping,
		AnalyticsCache:     dataCache,
		Logger:             logger,
		DefaultLocale:      i18n.NewPreferences(cfg.DefaultLocale, "").Locale,
		DefaultUser:        "demo",
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}

	// Keep interfaces nil when messaging is off; a typed nil would look configured.
	var refresh *services.RefreshService
	if amqpClient := cli.NewAMQPClient(logger, cfg); amqpClient != nil {
		refresh = services.NewRefreshService(svc, amqpClient, logger)
		deps.Messaging = amqpClient
	} else {
		refresh = services.NewRefreshService(svc, nil, logger)
	}
	deps.Refresh = refresh

	srv, err := apphttp.NewServer(":"+cfg.Port, deps)
	if err != nil {
		logger.Error("Failed to create HTTP server", log.FieldError, err)
		os.Exit(1)
	}
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := refresh.Close(); err != nil {
			logger.Error("Messaging close error", log.FieldError, err)
		}
	})

	logger.Info("Listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
