// Package tsv parses dictionary sources stored as tab-separated rows of
// head, part of speech and definition, one row per sense.
// Pure function: file path in, domain structs out. No dictionary dependencies.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

// Stats holds parser statistics for logging.
type Stats struct {
	Rows       int
	ShortRows  int
	EmptyHeads int
	Records    int
}

// Parse reads a TSV source file. The first row is a header.
func Parse(filePath string) ([]domain.SourceRecord, Stats, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return parse(f)
}

// parse reads rows from r. Consecutive rows with the same head and part of
// speech are folded into one record.
func parse(r io.Reader) ([]domain.SourceRecord, Stats, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable column count

	var stats Stats

	// Skip header row.
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, nil
		}
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	var records []domain.SourceRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row: %w", err)
		}
		stats.Rows++

		if len(row) < 3 {
			stats.ShortRows++
			continue
		}
		head := domain.NormalizeText(row[0])
		if head == "" {
			stats.EmptyHeads++
			continue
		}
		pos := domain.NormalizeText(row[1])
		def := domain.NormalizeText(row[2])

		if n := len(records); n > 0 && records[n-1].Head == head && records[n-1].POS == pos {
			if def != "" {
				records[n-1].Definitions = append(records[n-1].Definitions, def)
			}
			continue
		}

		rec := domain.SourceRecord{Head: head, POS: pos}
		if def != "" {
			rec.Definitions = []string{def}
		}
		records = append(records, rec)
	}

	stats.Records = len(records)
	return records, stats, nil
}
