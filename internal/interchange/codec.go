package interchange

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Sort orders records by (NFD slug or formOf target, NFD head for wordforms
// and "" for lemmas). Remaining ties fall back to the analysis and the
// definitions so that the order never depends on input order.
func Sort(records []Record) {
	type keyed struct {
		primary, secondary, analysis, senses string
		rec                                  Record
	}

	ks := make([]keyed, len(records))
	for i, r := range records {
		k := keyed{rec: r}
		if r.IsWordform() {
			k.primary = norm.NFD.String(r.FormOf)
			k.secondary = norm.NFD.String(r.Head)
		} else {
			k.primary = norm.NFD.String(r.Slug)
		}
		if r.Analysis != nil {
			k.analysis = r.Analysis.String()
		}
		defs := make([]string, len(r.Senses))
		for j, s := range r.Senses {
			defs[j] = s.Definition
		}
		k.senses = strings.Join(defs, "\x00")
		ks[i] = k
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		return cmp.Or(
			cmp.Compare(a.primary, b.primary),
			cmp.Compare(a.secondary, b.secondary),
			cmp.Compare(a.analysis, b.analysis),
			cmp.Compare(a.senses, b.senses),
		)
	})

	for i := range ks {
		records[i] = ks[i].rec
	}
}

// Encode writes records as an indented JSON array followed by a newline.
// Records are written in the given order; call Sort first for the canonical
// order.
func Encode(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode dictionary: %w", err)
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses an interchange array and validates it with ValidateAll.
func Decode(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	if err := ValidateAll(records); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	return records, nil
}
