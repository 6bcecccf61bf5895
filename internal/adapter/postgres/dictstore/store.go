// Package dictstore publishes assembled dictionary builds to PostgreSQL and
// reads them back for the search service.
package dictstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/lexibuild/internal/adapter/postgres"
	"github.com/heartmarshall/lexibuild/internal/domain"
	"github.com/heartmarshall/lexibuild/internal/interchange"
)

const defaultBatchSize = 5000

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var (
	buildColumns    = []string{"id", "version", "lemma_count", "wordform_count", "created_at"}
	lemmaColumns    = []string{"build_id", "position", "slug", "head", "analysis", "paradigm", "fst_lemma", "linguistic_info"}
	wordformColumns = []string{"build_id", "position", "head", "analysis", "form_of"}
	senseColumns    = []string{"build_id", "position", "sense_index", "definition", "sources"}
)

// Store provides dictionary build persistence backed by PostgreSQL.
type Store struct {
	db        postgres.DB
	txm       *postgres.TxManager
	batchSize int
	now       func() time.Time
}

// New creates a new Store. batchSize bounds the rows sent per COPY.
func New(db postgres.DB, txm *postgres.TxManager, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Store{db: db, txm: txm, batchSize: batchSize, now: time.Now}
}

// ---------------------------------------------------------------------------
// Write side
// ---------------------------------------------------------------------------

// Publish stores records as build id in a single transaction. Records are
// expected in canonical order; their index becomes the stored position.
func (s *Store) Publish(ctx context.Context, id uuid.UUID, version string, records []interchange.Record) (domain.Build, error) {
	build := domain.Build{ID: id, Version: version, CreatedAt: s.now().UTC()}

	var lemmas, wordforms, senses [][]any
	for pos, r := range records {
		analysis, err := jsonOrNil(r.Analysis)
		if err != nil {
			return domain.Build{}, fmt.Errorf("record %d analysis: %w", pos, err)
		}

		if r.IsWordform() {
			wordforms = append(wordforms, []any{id, pos, r.Head, analysis, r.FormOf})
			build.Wordforms++
		} else {
			var info any
			if len(r.Linguistic) > 0 {
				data, err := json.Marshal(r.Linguistic)
				if err != nil {
					return domain.Build{}, fmt.Errorf("record %d linguistic info: %w", pos, err)
				}
				info = data
			}
			lemmas = append(lemmas, []any{id, pos, r.Slug, r.Head, analysis, nullString(r.Paradigm), nullString(r.FSTLemma), info})
			build.Lemmas++
		}

		for i, sn := range r.Senses {
			sources := sn.Sources
			if sources == nil {
				sources = []string{}
			}
			senses = append(senses, []any{id, pos, i, sn.Definition, sources})
		}
	}

	err := s.txm.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, s.db)

		sql, args, err := psql.Insert("dictionary_builds").
			Columns(buildColumns...).
			Values(build.ID, build.Version, build.Lemmas, build.Wordforms, build.CreatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert query: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return postgres.MapError(err, "build", id.String())
		}

		// Lemmas go first: wordforms reference them.
		if err := s.copyRows(ctx, q, "dictionary_lemmas", lemmaColumns, lemmas); err != nil {
			return err
		}
		if err := s.copyRows(ctx, q, "dictionary_wordforms", wordformColumns, wordforms); err != nil {
			return err
		}
		return s.copyRows(ctx, q, "dictionary_senses", senseColumns, senses)
	})
	if err != nil {
		return domain.Build{}, fmt.Errorf("publish build %s: %w", id, err)
	}
	return build, nil
}

func (s *Store) copyRows(ctx context.Context, q postgres.Querier, table string, columns []string, rows [][]any) error {
	_, err := batchProcess(rows, s.batchSize, func(batch [][]any) (int, error) {
		n, err := q.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(batch))
		return int(n), err
	})
	if err != nil {
		return postgres.MapError(err, "copy", table)
	}
	return nil
}

// batchProcess splits items into batches and processes each via fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// ---------------------------------------------------------------------------
// Read side
// ---------------------------------------------------------------------------

// LatestBuild returns the most recently published build.
// Returns domain.ErrNotFound if nothing was published yet.
func (s *Store) LatestBuild(ctx context.Context) (domain.Build, error) {
	sql, args, err := psql.Select(buildColumns...).
		From("dictionary_builds").
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Build{}, fmt.Errorf("latest build query: %w", err)
	}

	var b domain.Build
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, s.db), &b, sql, args...); err != nil {
		return domain.Build{}, mapScanError(err, "build", "latest")
	}
	return b, nil
}

// ListSlugs returns the lemma slugs of a build in publication order.
func (s *Store) ListSlugs(ctx context.Context, buildID uuid.UUID) ([]string, error) {
	sql, args, err := psql.Select("slug").
		From("dictionary_lemmas").
		Where(squirrel.Eq{"build_id": buildID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list slugs query: %w", err)
	}

	var slugs []string
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, s.db), &slugs, sql, args...); err != nil {
		return nil, mapScanError(err, "build", buildID.String())
	}
	return slugs, nil
}

// ListHeadwords returns the lemma and wordform heads of a build, lemmas
// first, each in publication order.
func (s *Store) ListHeadwords(ctx context.Context, buildID uuid.UUID) ([]domain.Headword, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	var out []domain.Headword
	queries := []squirrel.SelectBuilder{
		psql.Select("head", "slug", "false AS wordform").
			From("dictionary_lemmas").
			Where(squirrel.Eq{"build_id": buildID}).
			OrderBy("position"),
		psql.Select("head", "form_of AS slug", "true AS wordform").
			From("dictionary_wordforms").
			Where(squirrel.Eq{"build_id": buildID}).
			OrderBy("position"),
	}
	for _, qb := range queries {
		sql, args, err := qb.ToSql()
		if err != nil {
			return nil, fmt.Errorf("list headwords query: %w", err)
		}
		var rows []domain.Headword
		if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
			return nil, mapScanError(err, "build", buildID.String())
		}
		out = append(out, rows...)
	}
	return out, nil
}

type lemmaRow struct {
	Position   int     `db:"position"`
	Slug       string  `db:"slug"`
	Head       string  `db:"head"`
	Analysis   []byte  `db:"analysis"`
	Paradigm   *string `db:"paradigm"`
	FSTLemma   *string `db:"fst_lemma"`
	Linguistic []byte  `db:"linguistic_info"`
}

type senseRow struct {
	Definition string   `db:"definition"`
	Sources    []string `db:"sources"`
}

// LemmaBySlug returns the lemma record with its senses.
// Returns domain.ErrNotFound if the build has no such slug.
func (s *Store) LemmaBySlug(ctx context.Context, buildID uuid.UUID, slug string) (interchange.Record, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	sql, args, err := psql.Select(lemmaColumns[1:]...).
		From("dictionary_lemmas").
		Where(squirrel.Eq{"build_id": buildID, "slug": slug}).
		ToSql()
	if err != nil {
		return interchange.Record{}, fmt.Errorf("lemma query: %w", err)
	}

	var row lemmaRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return interchange.Record{}, mapScanError(err, "lemma", slug)
	}

	rec := interchange.Record{
		Head:     row.Head,
		Slug:     row.Slug,
		Paradigm: deref(row.Paradigm),
		FSTLemma: deref(row.FSTLemma),
	}
	if len(row.Analysis) > 0 {
		var a domain.Analysis
		if err := json.Unmarshal(row.Analysis, &a); err != nil {
			return interchange.Record{}, fmt.Errorf("lemma %s analysis: %w", slug, err)
		}
		rec.Analysis = &a
	}
	if len(row.Linguistic) > 0 {
		if err := json.Unmarshal(row.Linguistic, &rec.Linguistic); err != nil {
			return interchange.Record{}, fmt.Errorf("lemma %s linguistic info: %w", slug, err)
		}
	}

	sql, args, err = psql.Select("definition", "sources").
		From("dictionary_senses").
		Where(squirrel.Eq{"build_id": buildID, "position": row.Position}).
		OrderBy("sense_index").
		ToSql()
	if err != nil {
		return interchange.Record{}, fmt.Errorf("senses query: %w", err)
	}

	var senses []senseRow
	if err := pgxscan.Select(ctx, q, &senses, sql, args...); err != nil {
		return interchange.Record{}, mapScanError(err, "lemma", slug)
	}
	rec.Senses = make([]domain.Sense, len(senses))
	for i, sn := range senses {
		rec.Senses[i] = domain.Sense{Definition: sn.Definition, Sources: sn.Sources}
	}
	return rec, nil
}

func mapScanError(err error, entity, key string) error {
	if pgxscan.NotFound(err) {
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}
	return postgres.MapError(err, entity, key)
}

func jsonOrNil(a *domain.Analysis) (any, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
