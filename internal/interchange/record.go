// Package interchange defines the assembled-dictionary file consumed by the
// search service: a single JSON array of lemma and wordform records.
package interchange

import (
	"fmt"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

// Record is one element of the interchange array. A record with FormOf set is
// a wordform of the lemma whose Slug equals FormOf; otherwise it is a lemma
// entry and Slug is required. Field order is the serialized key order.
type Record struct {
	Head       string           `json:"head"`
	Analysis   *domain.Analysis `json:"analysis,omitempty"`
	Paradigm   string           `json:"paradigm,omitempty"`
	Senses     []domain.Sense   `json:"senses"`
	Slug       string           `json:"slug,omitempty"`
	FSTLemma   string           `json:"fstLemma,omitempty"`
	Linguistic map[string]any   `json:"linguisticInfo,omitempty"`
	FormOf     string           `json:"formOf,omitempty"`
}

// IsWordform reports whether r links to a lemma instead of being one.
func (r Record) IsWordform() bool {
	return r.FormOf != ""
}

// Validate checks the shape of a single record.
func (r Record) Validate() error {
	var errs []domain.FieldError
	if r.Head == "" {
		errs = append(errs, domain.FieldError{Field: "head", Message: "required"})
	}
	if r.IsWordform() {
		if r.Slug != "" {
			errs = append(errs, domain.FieldError{Field: "slug", Message: "wordforms are addressed through formOf"})
		}
		if r.Paradigm != "" {
			errs = append(errs, domain.FieldError{Field: "paradigm", Message: "not allowed on wordforms"})
		}
	} else if r.Slug == "" {
		errs = append(errs, domain.FieldError{Field: "slug", Message: "required on lemma entries"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ValidateAll checks every record plus the cross-record invariants: slugs are
// unique and every formOf names a lemma slug present in records.
func ValidateAll(records []Record) error {
	slugs := make(map[string]bool, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d (%q): %w", i, r.Head, err)
		}
		if r.IsWordform() {
			continue
		}
		if slugs[r.Slug] {
			return fmt.Errorf("record %d: slug %q: %w", i, r.Slug, domain.ErrSlugConflict)
		}
		slugs[r.Slug] = true
	}
	for i, r := range records {
		if r.IsWordform() && !slugs[r.FormOf] {
			return fmt.Errorf("record %d (%q): formOf %q: %w", i, r.Head, r.FormOf, domain.ErrUnresolvedFormOf)
		}
	}
	return nil
}
