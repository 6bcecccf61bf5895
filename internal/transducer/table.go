// Package transducer provides morphological analysis and generation backed by
// a precompiled lookup table exported from the finite-state transducer.
package transducer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

// maxLineSize is the buffer size for bufio.Scanner (1 MB).
const maxLineSize = 1 << 20

// Analyzer maps a surface form to its possible analyses.
type Analyzer interface {
	Analyze(surface string) []domain.Analysis
}

// Generator maps an analysis back to the surface forms that realize it.
type Generator interface {
	Generate(analysis domain.Analysis) []string
}

// Table is an in-memory Analyzer and Generator. Each line of its source file
// is "surface<TAB>analysis"; a surface may appear on several lines.
// Blank lines and lines starting with "#" are ignored.
type Table struct {
	analyses map[string][]domain.Analysis
	surfaces map[string][]string
}

// Stats holds table loading statistics for logging.
type Stats struct {
	Lines     int
	Pairs     int
	Malformed int
}

// Load opens and reads a table file.
func Load(path string) (*Table, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open transducer table: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a table. Lines without a tab or with an unparseable analysis are
// counted as malformed and skipped.
func Read(r io.Reader) (*Table, Stats, error) {
	t := &Table{
		analyses: make(map[string][]domain.Analysis),
		surfaces: make(map[string][]string),
	}
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		surface, raw, ok := strings.Cut(line, "\t")
		if !ok || surface == "" {
			stats.Malformed++
			continue
		}
		a, err := domain.ParseAnalysis(raw)
		if err != nil {
			stats.Malformed++
			continue
		}
		if t.add(surface, a) {
			stats.Pairs++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scanner error: %w", err)
	}
	return t, stats, nil
}

func (t *Table) add(surface string, a domain.Analysis) bool {
	for _, existing := range t.analyses[surface] {
		if existing.Equal(a) {
			return false
		}
	}
	t.analyses[surface] = append(t.analyses[surface], a)
	key := a.String()
	t.surfaces[key] = append(t.surfaces[key], surface)
	return true
}

// Analyze returns the analyses of surface in file order.
func (t *Table) Analyze(surface string) []domain.Analysis {
	return slices.Clone(t.analyses[surface])
}

// Generate returns the surfaces of analysis in file order.
func (t *Table) Generate(analysis domain.Analysis) []string {
	return slices.Clone(t.surfaces[analysis.String()])
}

// Len returns the number of distinct surface forms.
func (t *Table) Len() int { return len(t.analyses) }

// Unique returns the single analysis of surface, or false when the surface is
// unknown or ambiguous.
func Unique(a Analyzer, surface string) (domain.Analysis, bool) {
	list := a.Analyze(surface)
	if len(list) != 1 {
		return domain.Analysis{}, false
	}
	return list[0], true
}
