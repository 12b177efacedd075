// Package cli provides common CLI initialization utilities shared by
// cmd/previaje and cmd/previaje-import.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"previaje/internal/config"
	plog "previaje/internal/log"
)

// SetupLogger installs a text logger on stdout at the given level as the
// default logger. Unknown levels fall back to info.
func SetupLogger(level string) *plog.Logger {
	lvl, err := plog.ParseLevel(level)
	logger := plog.New(plog.Config{Level: lvl, Component: plog.ComponentApp})
	plog.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", plog.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on failure.
func LoadAndValidateConfig(logger *plog.Logger) *config.Config {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger.Error("Configuration validation failed",
			plog.FieldError, err,
			plog.FieldErrorType, plog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
// cleanup runs with a context bounded by timeout before the returned
// channel is closed.
func GracefulShutdown(logger *plog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), plog.FieldOperation, plog.OpShutdown)

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

// Fatal logs err with its category and exits.
func Fatal(logger *plog.Logger, msg string, err error, errorType string) {
	logger.Log(context.Background(), slog.LevelError, msg, plog.FieldError, err, plog.FieldErrorType, errorType)
	os.Exit(1)
}
