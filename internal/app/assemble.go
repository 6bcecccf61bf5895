package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexibuild/internal/adapter/postgres"
	"github.com/heartmarshall/lexibuild/internal/adapter/postgres/dictstore"
	"github.com/heartmarshall/lexibuild/internal/app/importer"
	"github.com/heartmarshall/lexibuild/internal/config"
	"github.com/heartmarshall/lexibuild/internal/dictionary"
	"github.com/heartmarshall/lexibuild/internal/interchange"
	"github.com/heartmarshall/lexibuild/internal/transducer"
	"github.com/heartmarshall/lexibuild/pkg/ctxutil"
)

// ErrImportFailed is returned when at least one source could not be imported.
var ErrImportFailed = errors.New("import failed")

// AssembleOptions are per-run overrides given on the command line.
type AssembleOptions struct {
	Phases  []string
	DryRun  bool
	Publish bool
}

// AssembleReport describes a finished run.
type AssembleReport struct {
	BuildID uuid.UUID
	Result  dictionary.Result
	Pinned  int
	Elapsed time.Duration
}

// Assemble imports the configured sources, assembles the dictionary and
// writes it to the configured output path. On a dry run sources are only
// parsed and nothing is written.
func Assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts AssembleOptions) (AssembleReport, error) {
	start := time.Now()
	report := AssembleReport{BuildID: uuid.New()}
	ctx = ctxutil.WithBuildID(ctx, report.BuildID)

	if opts.Publish && !cfg.Database.Enabled() {
		return report, fmt.Errorf("publish: database dsn not configured")
	}

	var analyzer transducer.Analyzer
	if cfg.Transducer.TablePath != "" {
		table, stats, err := transducer.Load(cfg.Transducer.TablePath)
		if err != nil {
			return report, err
		}
		logger.InfoContext(ctx, "transducer table loaded",
			slog.Int("lines", stats.Lines),
			slog.Int("pairs", stats.Pairs),
			slog.Int("malformed", stats.Malformed),
		)
		analyzer = table
	}

	// Step 1: import.
	dict := dictionary.New(logger, cfg.Assembly.LexicalTags)
	pipeline := importer.NewPipeline(logger, dict, analyzer, importer.Config{
		Sources:         cfg.Sources,
		Paradigms:       cfg.Paradigms,
		ExcludedSources: cfg.Assembly.ExcludedSources,
		DryRun:          opts.DryRun,
	})
	if err := pipeline.Run(ctx, opts.Phases); err != nil {
		return report, fmt.Errorf("import: %w", err)
	}
	results := pipeline.Results()
	for _, src := range cfg.Sources {
		if r, ok := results[src.Abbrev]; ok && r.Err != nil {
			return report, fmt.Errorf("source %s: %w: %w", src.Abbrev, ErrImportFailed, r.Err)
		}
	}
	if pipeline.HasErrors() {
		logger.WarnContext(ctx, "import completed with errors")
	}
	if opts.DryRun {
		logger.InfoContext(ctx, "dry run, nothing written")
		report.Elapsed = time.Since(start)
		return report, nil
	}

	// Step 2: keep slugs stable across runs.
	if cfg.Assembly.PreviousPath != "" {
		previous, err := readRecords(cfg.Assembly.PreviousPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.InfoContext(ctx, "no previous dictionary, slugs start fresh",
				slog.String("path", cfg.Assembly.PreviousPath))
		case err != nil:
			return report, fmt.Errorf("previous dictionary: %w", err)
		default:
			report.Pinned = dict.PinSlugs(previous)
			logger.InfoContext(ctx, "slugs pinned",
				slog.Int("pinned", report.Pinned),
				slog.Int("previous", len(previous)),
			)
		}
	}

	tieBreakers, err := dictionary.LoadTieBreakers(cfg.Assembly.TieBreakersPath)
	if err != nil {
		return report, err
	}

	// Step 3: assemble.
	res, err := dict.Assemble(dictionary.AssembleOptions{
		Descriptor:  descriptorFor(cfg.Assembly.Descriptor),
		TieBreakers: tieBreakers,
	})
	if err != nil {
		return report, fmt.Errorf("assemble: %w", err)
	}
	report.Result = res

	// Step 4: outputs.
	if err := writeRecords(cfg.Assembly.OutputPath, res.Records); err != nil {
		return report, err
	}
	logger.InfoContext(ctx, "dictionary written",
		slog.String("path", cfg.Assembly.OutputPath),
		slog.Int("lemmas", res.Lemmas),
		slog.Int("wordforms", res.Wordforms),
		slog.Int("dropped", res.Dropped),
	)

	if opts.Publish {
		if err := publish(ctx, cfg.Database, report.BuildID, res.Records); err != nil {
			return report, err
		}
		logger.InfoContext(ctx, "dictionary published", slog.String("version", Version))
	}

	report.Elapsed = time.Since(start)
	if cfg.Assembly.MetricsPath != "" {
		m := NewBuildMetrics()
		m.Observe(res, report.Elapsed)
		if err := m.WriteTextfile(cfg.Assembly.MetricsPath); err != nil {
			return report, err
		}
	}

	logger.InfoContext(ctx, "assembly completed", slog.Duration("duration", report.Elapsed))
	return report, nil
}

func descriptorFor(mode string) dictionary.DescriptorFunc {
	if mode == config.DescriptorPOS {
		return posDescriptor
	}
	return dictionary.DefaultDescriptor
}

// posDescriptor prefers the source part of speech over the paradigm.
func posDescriptor(e *dictionary.Entry) string {
	if pos, ok := e.Linguistic["pos"].(string); ok && pos != "" {
		return pos
	}
	return e.Paradigm
}

func publish(ctx context.Context, dbCfg config.DatabaseConfig, id uuid.UUID, records []interchange.Record) error {
	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer pool.Close()

	store := dictstore.New(pool, postgres.NewTxManager(pool), dbCfg.CopyBatchSize)
	if _, err := store.Publish(ctx, id, Version, records); err != nil {
		return err
	}
	return nil
}

// readRecords decodes an interchange file.
func readRecords(path string) ([]interchange.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := interchange.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// writeRecords encodes records to path through a temporary file in the same
// directory, so readers never see a partial dictionary.
func writeRecords(path string, records []interchange.Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := interchange.Encode(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("encode output: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
