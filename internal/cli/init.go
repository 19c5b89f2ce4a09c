// Package cli provides common initialization for the caja binary: logging,
// environment loading, configuration and storage backend selection.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"caja/internal/config"
	applog "caja/internal/log"
	"caja/internal/store"
)

// SetupLogger initializes structured logging with default settings and sets
// it as the process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.ComponentApp, applog.Config{Level: slog.LevelInfo})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the configured storage backend wrapped in a durable
// store. A SQLite backend that cannot be opened degrades to a
// non-persistent store instead of failing the process; the session then
// runs in memory only. The returned cleanup closes the backend.
func OpenStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*store.Store, func() error) {
	if cfg.DataBackend == "memory" {
		logger.Info("Initialized memory backend", applog.FieldBackend, cfg.DataBackend)
		return store.New(ctx, store.NewMemoryBackend()), func() error { return nil }
	}

	backend, err := store.NewSQLiteBackend(cfg.SQLiteDBPath)
	if err != nil {
		logger.Warn("Failed to open SQLite backend, continuing without persistence",
			applog.FieldError, err, applog.FieldPath, cfg.SQLiteDBPath)
		broken := store.NewMemoryBackend()
		broken.Fail(err)
		return store.New(ctx, broken), func() error { return nil }
	}

	logger.Info("Initialized SQLite backend",
		applog.FieldBackend, cfg.DataBackend, applog.FieldPath, cfg.SQLiteDBPath)
	return store.New(ctx, backend), backend.Close
}
