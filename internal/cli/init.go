// Package cli provides common initialization utilities shared by
// cmd/thuchi and cmd/adduser.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/config"
	applog "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/log"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/storage"
)

// SetupLogger initializes structured logging with default settings and
// installs the logger as the process default.
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
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes the SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.Repository {
	repo, err := storage.NewRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
