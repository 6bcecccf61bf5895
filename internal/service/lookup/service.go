// Package lookup answers closest-match queries against a published
// dictionary build.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexibuild/internal/domain"
	"github.com/heartmarshall/lexibuild/internal/interchange"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type buildStore interface {
	LatestBuild(ctx context.Context) (domain.Build, error)
	ListHeadwords(ctx context.Context, buildID uuid.UUID) ([]domain.Headword, error)
	LemmaBySlug(ctx context.Context, buildID uuid.UUID, slug string) (interchange.Record, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service serves lookups from the latest published build. The index is
// built on first use and rebuilt when a newer build appears.
type Service struct {
	log   *slog.Logger
	store buildStore

	mu      sync.Mutex
	buildID uuid.UUID
	index   *Index
}

// NewService creates a new lookup service.
func NewService(logger *slog.Logger, store buildStore) *Service {
	return &Service{
		log:   logger.With("service", "lookup"),
		store: store,
	}
}

// Search returns the closest matches for query in the latest build.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	ix, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Closest(query, limit), nil
}

// Lemma returns the lemma record for slug in the latest build.
func (s *Service) Lemma(ctx context.Context, slug string) (interchange.Record, error) {
	_, buildID, err := s.current(ctx)
	if err != nil {
		return interchange.Record{}, err
	}
	rec, err := s.store.LemmaBySlug(ctx, buildID, slug)
	if err != nil {
		return interchange.Record{}, fmt.Errorf("lookup lemma: %w", err)
	}
	return rec, nil
}

func (s *Service) current(ctx context.Context) (*Index, uuid.UUID, error) {
	build, err := s.store.LatestBuild(ctx)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("lookup latest build: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil && s.buildID == build.ID {
		return s.index, s.buildID, nil
	}

	heads, err := s.store.ListHeadwords(ctx, build.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("lookup headwords: %w", err)
	}
	s.index = NewIndex(nil, heads)
	s.buildID = build.ID

	s.log.InfoContext(ctx, "lookup index loaded",
		slog.String("build_id", build.ID.String()),
		slog.String("version", build.Version),
		slog.Int("headwords", len(heads)),
	)
	return s.index, s.buildID, nil
}
