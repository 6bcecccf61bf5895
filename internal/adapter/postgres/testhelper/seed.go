package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedBuild inserts an empty dictionary build row and returns its ID.
func SeedBuild(t *testing.T, pool *pgxpool.Pool, version string, createdAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO dictionary_builds (id, version, lemma_count, wordform_count, created_at)
		 VALUES ($1, $2, 0, 0, $3)`,
		id, version, createdAt,
	)
	if err != nil {
		t.Fatalf("testhelper: seed build: %v", err)
	}
	return id
}
