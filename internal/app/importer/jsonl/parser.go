// Package jsonl parses dictionary sources stored as one JSON object per line.
// Pure function: file path in, domain structs out. No dictionary dependencies.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

// maxLineSize is the buffer size for bufio.Scanner (16 MB).
const maxLineSize = 16 << 20

// Stats holds parser statistics for logging.
type Stats struct {
	TotalLines     int
	MalformedLines int
	EmptyHeads     int
	Records        int
}

type line struct {
	Head     string  `json:"head"`
	POS      string  `json:"pos"`
	Paradigm string  `json:"paradigm"`
	FSTLemma string  `json:"fst_lemma"`
	Analysis string  `json:"analysis"`
	Senses   []sense `json:"senses"`
}

type sense struct {
	Definition string `json:"definition"`
}

// Parse reads a JSONL source file.
func Parse(filePath string) ([]domain.SourceRecord, Stats, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return parse(f)
}

// parse reads records from r. Lines that are not valid JSON objects are
// counted as malformed and skipped; blank lines are ignored.
func parse(r io.Reader) ([]domain.SourceRecord, Stats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		records []domain.SourceRecord
		stats   Stats
	)
	for scanner.Scan() {
		stats.TotalLines++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			stats.MalformedLines++
			continue
		}

		head := domain.NormalizeText(l.Head)
		if head == "" {
			stats.EmptyHeads++
			continue
		}

		rec := domain.SourceRecord{
			Head:     head,
			POS:      domain.NormalizeText(l.POS),
			Paradigm: domain.NormalizeText(l.Paradigm),
			FSTLemma: domain.NormalizeText(l.FSTLemma),
			Analysis: domain.NormalizeText(l.Analysis),
		}
		for _, s := range l.Senses {
			if def := domain.NormalizeText(s.Definition); def != "" {
				rec.Definitions = append(rec.Definitions, def)
			}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scanner error: %w", err)
	}

	stats.Records = len(records)
	return records, stats, nil
}
