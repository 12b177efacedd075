package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"previaje/internal/backend"
	"previaje/internal/cli"
	"previaje/internal/config"
	"previaje/internal/core"
	apphttp "previaje/internal/http"
	"previaje/internal/loader"
	plog "previaje/internal/log"
	"previaje/internal/metrics"
)

func main() {
	cli.LoadEnvFile()

	// bootstrap logger until the configured level is known
	logger := cli.SetupLogger(config.Defaults().LogLevel)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting previaje dashboard",
		plog.FieldOperation, plog.OpStartup,
		plog.FieldBackend, cfg.DataBackend,
		"port", cfg.Port)

	m := metrics.New()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err, plog.ErrorTypeConfiguration)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize data backend", err, plog.ErrorTypeDataset)
	}

	ds, err := loader.Load(context.Background(), result.Source, result.Source, loader.Options{
		Order:         core.DateOrder(cfg.DateOrder),
		SimplifyRatio: cfg.SimplifyRatio,
		StrictJoins:   cfg.StrictJoins,
		Logger:        logger,
		Metrics:       m,
	})
	// every table is in memory now
	if cerr := result.Close(); cerr != nil {
		logger.Warn("Failed to close data backend", plog.FieldError, cerr)
	}
	if err != nil {
		cli.Fatal(logger, "Failed to load dataset", err, plog.ErrorTypeDataset)
	}

	srv, err := apphttp.NewServer(ds, apphttp.Options{
		Addr:               cfg.Addr(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Metrics:            m,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to create HTTP server", err, plog.ErrorTypeInternal)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", plog.FieldError, err)
		}
	})

	logger.Info("Listening", "addr", srv.Addr, plog.FieldMonths, ds.Dates().Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, plog.ErrorTypeInternal)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
