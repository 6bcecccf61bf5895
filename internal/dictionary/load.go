package dictionary

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/heartmarshall/lexibuild/internal/domain"
	"github.com/heartmarshall/lexibuild/internal/interchange"
)

// FromRecords rebuilds a dictionary from an interchange file. Lemma records
// become slugged entries, wordform records are linked through formOf.
// Assembling the result again yields the same records.
func FromRecords(log *slog.Logger, lexicalTags []string, records []interchange.Record) (*Dictionary, error) {
	if err := interchange.ValidateAll(records); err != nil {
		return nil, err
	}

	d := New(log, lexicalTags)
	for _, r := range records {
		if r.IsWordform() {
			continue
		}
		e := d.Create(r.Head)
		if err := d.SetSlug(e, r.Slug); err != nil {
			return nil, err
		}
		e.Analysis = r.Analysis
		e.Paradigm = r.Paradigm
		e.FSTLemma = r.FSTLemma
		e.Linguistic = maps.Clone(r.Linguistic)
		addSenses(&e.senses, r.Senses)
	}

	for _, r := range records {
		if !r.IsWordform() {
			continue
		}
		lemma, ok := d.bySlug[r.FormOf]
		if !ok {
			return nil, fmt.Errorf("wordform %q: formOf %q: %w", r.Head, r.FormOf, domain.ErrUnresolvedFormOf)
		}
		w, err := d.AddWordform(lemma, r.Head, r.Analysis)
		if err != nil {
			return nil, err
		}
		addSenses(&w.senses, r.Senses)
	}
	return d, nil
}

func addSenses(s *senses, list []domain.Sense) {
	for _, sn := range list {
		s.AddSense(sn.Definition, sn.Sources...)
	}
}
