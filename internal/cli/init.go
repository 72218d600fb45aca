// Package cli consolidates the initialization steps shared by the
// binaries: env loading, logging, configuration and storage setup.
package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/config"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/storage"
)

// SetupLogger builds the structured logger for the binary's component
// and installs it as the process default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. Missing files are fine,
// containers configure through real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and exits the process when
// it does not validate. The error lists every problem at once.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenRepository opens the SQLite store, running migrations, and exits
// on failure. The caller owns Close.
func OpenRepository(cfg *config.Config, logger *applog.Logger) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	return repo
}

// NotifyShutdown returns a channel that receives SIGINT and SIGTERM.
func NotifyShutdown() chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}
