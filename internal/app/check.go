package app

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/heartmarshall/lexibuild/internal/dictionary"
	"github.com/heartmarshall/lexibuild/internal/interchange"
)

// Check reloads an assembled dictionary file and reports whether
// re-assembling it reproduces the file byte for byte. With fix set, a
// non-canonical file is rewritten in canonical form.
func Check(path string, fix bool, logger *slog.Logger) (bool, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("check: %w", err)
	}
	records, err := interchange.Decode(bytes.NewReader(original))
	if err != nil {
		return false, fmt.Errorf("check %s: %w", path, err)
	}

	// The file is already flat: no lemma determination.
	dict, err := dictionary.FromRecords(logger, nil, records)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", path, err)
	}
	res, err := dict.Assemble(dictionary.AssembleOptions{})
	if err != nil {
		return false, fmt.Errorf("check %s: %w", path, err)
	}
	canonical, err := interchange.Marshal(res.Records)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", path, err)
	}

	if bytes.Equal(original, canonical) {
		logger.Info("dictionary is canonical", slog.String("path", path), slog.Int("records", len(records)))
		return true, nil
	}

	logger.Warn("dictionary is not canonical",
		slog.String("path", path),
		slog.Int("records", len(records)),
		slog.Int("dropped", res.Dropped),
	)
	if fix {
		if err := writeRecords(path, res.Records); err != nil {
			return false, err
		}
		logger.Info("dictionary rewritten", slog.String("path", path))
	}
	return false, nil
}
