package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/lexibuild/internal/adapter/postgres"
	"github.com/heartmarshall/lexibuild/internal/config"
)

// Bootstrap loads configuration from path (CONFIG_PATH when empty),
// initializes the logger, and logs startup information.
func Bootstrap(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, nil, err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting lexibuild",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Int("sources", len(cfg.Sources)),
	)

	return cfg, logger, nil
}

// Migrate applies the embedded database migrations.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Database.Enabled() {
		return fmt.Errorf("migrate: database dsn not configured")
	}

	applied, err := postgres.Migrate(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	logger.InfoContext(ctx, "migrations applied", slog.Int("count", len(applied)))
	return nil
}
