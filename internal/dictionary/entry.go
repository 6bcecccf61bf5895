package dictionary

import (
	"slices"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

// ID is a stable handle for an item. It survives demotion of an entry to a
// wordform and is never reused within a Dictionary.
type ID int

// Kind tells which variant an Item holds.
type Kind int

const (
	KindEntry Kind = iota + 1
	KindWordform
)

func (k Kind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindWordform:
		return "wordform"
	default:
		return "unknown"
	}
}

// senses is the gloss list shared by entries and wordforms.
type senses struct {
	list []domain.Sense
}

// AddSense records a gloss. An identical definition already present only
// gains the new sources.
func (s *senses) AddSense(definition string, sources ...string) {
	for i := range s.list {
		if s.list[i].Definition == definition {
			s.list[i].AddSources(sources...)
			return
		}
	}
	sn := domain.Sense{Definition: definition, Sources: []string{}}
	sn.AddSources(sources...)
	s.list = append(s.list, sn)
}

// Senses returns a copy of the glosses in insertion order.
func (s *senses) Senses() []domain.Sense {
	out := make([]domain.Sense, len(s.list))
	for i, sn := range s.list {
		out[i] = domain.Sense{Definition: sn.Definition, Sources: slices.Clone(sn.Sources)}
		if out[i].Sources == nil {
			out[i].Sources = []string{}
		}
	}
	return out
}

// HasSenses reports whether at least one gloss is attached.
func (s *senses) HasSenses() bool {
	return len(s.list) > 0
}

// RemoveSource strips src from every gloss and drops glosses left without
// any source.
func (s *senses) RemoveSource(src string) {
	kept := s.list[:0]
	for i := range s.list {
		if s.list[i].HasSource(src) && !s.list[i].RemoveSource(src) {
			continue
		}
		kept = append(kept, s.list[i])
	}
	clear(s.list[len(kept):])
	s.list = kept
}

// Entry is a dictionary headword that may become a lemma in the output.
// Head and slug are owned by the Dictionary indexes and are read-only here.
type Entry struct {
	senses

	id   ID
	head string
	slug string

	Analysis   *domain.Analysis
	Paradigm   string
	FSTLemma   string
	Linguistic map[string]any
}

func (e *Entry) ID() ID       { return e.id }
func (e *Entry) Head() string { return e.head }
func (e *Entry) Slug() string { return e.slug }

// EffectiveLemma is the lemma used to group entries: the explicit FST lemma
// when set, otherwise the analysis lemma.
func (e *Entry) EffectiveLemma() string {
	if e.FSTLemma != "" {
		return e.FSTLemma
	}
	if e.Analysis != nil {
		return e.Analysis.Lemma
	}
	return ""
}

// Wordform is an inflected form linked to the lemma entry it belongs to.
type Wordform struct {
	senses

	id     ID
	head   string
	formOf ID

	Analysis *domain.Analysis
}

func (w *Wordform) ID() ID       { return w.id }
func (w *Wordform) Head() string { return w.head }

// FormOf is the ID of the lemma entry.
func (w *Wordform) FormOf() ID { return w.formOf }

// Item holds exactly one of an entry or a wordform.
type Item struct {
	kind     Kind
	entry    *Entry
	wordform *Wordform
}

func (it Item) Kind() Kind { return it.kind }

// Entry returns the entry, or nil when the item is a wordform.
func (it Item) Entry() *Entry { return it.entry }

// Wordform returns the wordform, or nil when the item is an entry.
func (it Item) Wordform() *Wordform { return it.wordform }

// ID returns the handle of whichever variant the item holds.
func (it Item) ID() ID {
	switch it.kind {
	case KindEntry:
		return it.entry.id
	case KindWordform:
		return it.wordform.id
	default:
		return 0
	}
}

// Head returns the surface text of whichever variant the item holds.
func (it Item) Head() string {
	switch it.kind {
	case KindEntry:
		return it.entry.head
	case KindWordform:
		return it.wordform.head
	default:
		return ""
	}
}
