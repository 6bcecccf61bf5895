// Package importer merges the configured dictionary sources into a
// Dictionary, one phase per source.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/lexibuild/internal/app/importer/jsonl"
	"github.com/heartmarshall/lexibuild/internal/app/importer/tsv"
	"github.com/heartmarshall/lexibuild/internal/config"
	"github.com/heartmarshall/lexibuild/internal/dictionary"
	"github.com/heartmarshall/lexibuild/internal/domain"
	"github.com/heartmarshall/lexibuild/internal/transducer"
	"github.com/heartmarshall/lexibuild/pkg/ctxutil"
)

// Config holds importer settings.
type Config struct {
	Sources         []config.SourceConfig
	Paradigms       map[string]string
	ExcludedSources []string
	DryRun          bool
}

// PhaseResult holds the outcome of a single source phase.
type PhaseResult struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   int
	Duration time.Duration
	Err      error
}

// Pipeline imports sources into a dictionary.
type Pipeline struct {
	log      *slog.Logger
	dict     *dictionary.Dictionary
	analyzer transducer.Analyzer
	cfg      Config
	results  map[string]PhaseResult
}

// NewPipeline creates a new Pipeline. analyzer may be nil, in which case only
// analyses carried by the sources are used.
func NewPipeline(log *slog.Logger, dict *dictionary.Dictionary, analyzer transducer.Analyzer, cfg Config) *Pipeline {
	return &Pipeline{
		log:      log,
		dict:     dict,
		analyzer: analyzer,
		cfg:      cfg,
		results:  make(map[string]PhaseResult),
	}
}

// Results returns phase results after Run completes, keyed by source abbrev.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// HasErrors returns true if any phase recorded errors.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil || r.Errors > 0 {
			return true
		}
	}
	return false
}

type parsed struct {
	records []domain.SourceRecord
	err     error
	elapsed time.Duration
}

// Run imports the configured sources. If phases is non-empty, only sources
// whose abbrev is listed run. Sources are parsed concurrently and applied in
// configuration order.
func (p *Pipeline) Run(ctx context.Context, phases []string) error {
	toRun := p.cfg.Sources
	if len(phases) > 0 {
		filter := make(map[string]bool, len(phases))
		for _, ph := range phases {
			filter[ph] = true
		}
		var filtered []config.SourceConfig
		for _, src := range p.cfg.Sources {
			if filter[src.Abbrev] {
				filtered = append(filtered, src)
			}
		}
		toRun = filtered
	}

	// Step 1: parse every source in parallel.
	out := make([]parsed, len(toRun))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range toRun {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			records, err := parseSource(src)
			out[i] = parsed{records: records, err: err, elapsed: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("parse sources: %w", err)
	}

	// Step 2: apply in order.
	for i, src := range toRun {
		if err := ctx.Err(); err != nil {
			return err
		}
		pctx := ctxutil.WithPhase(ctx, src.Abbrev)
		p.log.InfoContext(pctx, "starting phase", slog.String("format", src.Format))

		start := time.Now()
		var result PhaseResult
		if out[i].err != nil {
			result = PhaseResult{Err: fmt.Errorf("parse %s: %w", src.Path, out[i].err)}
		} else {
			result = p.apply(src.Abbrev, out[i].records)
		}
		result.Duration = out[i].elapsed + time.Since(start)
		p.results[src.Abbrev] = result

		if result.Err != nil {
			p.log.WarnContext(pctx, "phase failed",
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
		} else {
			p.log.InfoContext(pctx, "phase completed",
				slog.Int("inserted", result.Inserted),
				slog.Int("updated", result.Updated),
				slog.Int("skipped", result.Skipped),
				slog.Int("errors", result.Errors),
				slog.Duration("duration", result.Duration),
			)
		}
	}

	// Step 3: strip excluded sources.
	if !p.cfg.DryRun {
		for _, abbrev := range p.cfg.ExcludedSources {
			p.dict.RemoveSource(abbrev)
			p.log.InfoContext(ctx, "excluded source removed", slog.String("source", abbrev))
		}
	}

	p.log.InfoContext(ctx, "import completed", slog.Int("phases_run", len(toRun)), slog.Int("items", p.dict.Len()))
	return nil
}

func parseSource(src config.SourceConfig) ([]domain.SourceRecord, error) {
	switch src.Format {
	case config.FormatJSONL:
		records, _, err := jsonl.Parse(src.Path)
		return records, err
	case config.FormatTSV:
		records, _, err := tsv.Parse(src.Path)
		return records, err
	default:
		return nil, fmt.Errorf("source %s: unknown format %q: %w", src.Abbrev, src.Format, domain.ErrValidation)
	}
}

// apply merges records of one source into the dictionary.
func (p *Pipeline) apply(abbrev string, records []domain.SourceRecord) PhaseResult {
	if p.cfg.DryRun {
		return PhaseResult{Skipped: len(records)}
	}

	var result PhaseResult
	for _, rec := range records {
		if rec.Head == "" {
			result.Skipped++
			continue
		}

		paradigm := rec.Paradigm
		if paradigm == "" && rec.POS != "" {
			paradigm = p.cfg.Paradigms[strings.ToLower(rec.POS)]
		}

		e, created := p.entryFor(rec.Head, paradigm)
		if created {
			result.Inserted++
		} else {
			result.Updated++
		}

		if rec.POS != "" {
			if e.Linguistic == nil {
				e.Linguistic = make(map[string]any)
			}
			if _, ok := e.Linguistic["pos"]; !ok {
				e.Linguistic["pos"] = rec.POS
			}
		}
		if e.FSTLemma == "" {
			e.FSTLemma = rec.FSTLemma
		}
		if e.Analysis == nil {
			if err := p.attachAnalysis(e, rec); err != nil {
				p.log.Warn("bad analysis",
					slog.String("source", abbrev),
					slog.String("head", rec.Head),
					slog.String("error", err.Error()),
				)
				result.Errors++
			}
		}

		for _, def := range rec.Definitions {
			e.AddSense(def, abbrev)
		}
	}
	return result
}

// entryFor returns the entry for (head, paradigm), creating it when needed.
func (p *Pipeline) entryFor(head, paradigm string) (*dictionary.Entry, bool) {
	for _, e := range p.dict.ByText(head) {
		if e.Paradigm == paradigm {
			return e, false
		}
	}
	e := p.dict.Create(head)
	e.Paradigm = paradigm
	return e, true
}

// attachAnalysis sets the analysis given by the source, or the transducer's
// when it is unambiguous.
func (p *Pipeline) attachAnalysis(e *dictionary.Entry, rec domain.SourceRecord) error {
	if rec.Analysis != "" {
		a, err := domain.ParseAnalysis(rec.Analysis)
		if err != nil {
			return err
		}
		e.Analysis = &a
		return nil
	}
	if p.analyzer == nil {
		return nil
	}
	if a, ok := transducer.Unique(p.analyzer, rec.Head); ok {
		e.Analysis = &a
		return nil
	}
	p.log.Debug("no unique analysis", slog.String("head", rec.Head))
	return nil
}
