package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/lexibuild/internal/adapter/postgres"
	"github.com/heartmarshall/lexibuild/internal/adapter/postgres/dictstore"
	"github.com/heartmarshall/lexibuild/internal/config"
	"github.com/heartmarshall/lexibuild/internal/service/lookup"
)

// LookupFile returns the closest matches for query in an interchange file.
func LookupFile(path, query string, limit int) ([]lookup.Match, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	return lookup.IndexRecords(records).Closest(query, limit), nil
}

// LookupPublished returns the closest matches for query in the latest
// published build.
func LookupPublished(ctx context.Context, cfg *config.Config, logger *slog.Logger, query string, limit int) ([]lookup.Match, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	defer pool.Close()

	store := dictstore.New(pool, postgres.NewTxManager(pool), cfg.Database.CopyBatchSize)
	return lookup.NewService(logger, store).Search(ctx, query, limit)
}
