package dictionary

import (
	"errors"
	"fmt"
	"maps"

	"github.com/heartmarshall/lexibuild/internal/domain"
	"github.com/heartmarshall/lexibuild/internal/interchange"
)

// AssembleOptions configures Assemble.
type AssembleOptions struct {
	Descriptor  DescriptorFunc
	TieBreakers TieBreakers
}

// Result is the outcome of Assemble.
type Result struct {
	Records   []interchange.Record
	Lemmas    int
	Wordforms int
	Dropped   int
}

// Assemble assigns slugs, determines lemmas when lexical tags are configured,
// drops items without senses, resolves wordform links and returns the records
// in canonical order.
func (d *Dictionary) Assemble(opts AssembleOptions) (Result, error) {
	if err := d.AssignSlugs(opts.Descriptor); err != nil {
		return Result{}, fmt.Errorf("assign slugs: %w", err)
	}

	err := d.DetermineLemmas(opts.TieBreakers)
	switch {
	case errors.Is(err, domain.ErrLemmasDisabled):
		d.log.Info("no lexical tags configured, skipping lemma determination")
	case err != nil:
		return Result{}, fmt.Errorf("determine lemmas: %w", err)
	}

	res, err := d.Records()
	if err != nil {
		return Result{}, err
	}
	interchange.Sort(res.Records)
	return res, nil
}

// Records converts the items to interchange records in insertion order,
// skipping items without senses and wordforms whose lemma was skipped.
func (d *Dictionary) Records() (Result, error) {
	var res Result
	dropped := make(map[ID]bool)
	orphaned := 0

	for _, it := range d.items {
		if it.kind == KindEntry && !it.entry.HasSenses() {
			d.log.Warn("dropping entry without senses", "head", it.entry.head, "slug", it.entry.slug)
			dropped[it.entry.id] = true
		}
	}

	res.Records = make([]interchange.Record, 0, len(d.items)-len(dropped))
	for _, it := range d.items {
		switch it.kind {
		case KindEntry:
			e := it.entry
			if dropped[e.id] {
				continue
			}
			if e.slug == "" {
				return Result{}, fmt.Errorf("entry %q has no slug: %w", e.head, domain.ErrValidation)
			}
			res.Records = append(res.Records, interchange.Record{
				Head:       e.head,
				Analysis:   e.Analysis,
				Paradigm:   e.Paradigm,
				Senses:     e.Senses(),
				Slug:       e.slug,
				FSTLemma:   e.FSTLemma,
				Linguistic: maps.Clone(e.Linguistic),
			})
			res.Lemmas++

		case KindWordform:
			w := it.wordform
			if dropped[w.formOf] {
				var target string
				if lemma, ok := d.Entry(w.formOf); ok {
					target = lemma.slug
				}
				d.log.Warn("dropping wordform of dropped lemma",
					"head", w.head, "form_of", target, "senses", len(w.list))
				dropped[w.id] = true
				orphaned++
				continue
			}
			if !w.HasSenses() {
				d.log.Warn("dropping wordform without senses", "head", w.head)
				dropped[w.id] = true
				continue
			}
			lemma, ok := d.Entry(w.formOf)
			if !ok || lemma.slug == "" {
				return Result{}, fmt.Errorf("wordform %q: %w", w.head, domain.ErrUnresolvedFormOf)
			}
			res.Records = append(res.Records, interchange.Record{
				Head:     w.head,
				Analysis: w.Analysis,
				Senses:   w.Senses(),
				FormOf:   lemma.slug,
			})
			res.Wordforms++

		default:
			return Result{}, fmt.Errorf("item %d: unknown kind %v", it.ID(), it.kind)
		}
	}

	if orphaned > 0 {
		d.log.Warn("wordforms lost with their lemma", "count", orphaned)
	}
	res.Dropped = len(dropped)
	return res, nil
}
