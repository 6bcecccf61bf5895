// Package dictionary holds the in-memory dictionary being assembled: entries
// and wordforms in insertion order, the text and slug indexes, and the
// passes that turn raw entries into a publishable interchange file.
package dictionary

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

// Dictionary is the assembly container. It is not safe for concurrent use;
// importers parse in parallel and apply to the Dictionary from one goroutine.
type Dictionary struct {
	log         *slog.Logger
	lexicalTags map[string]bool

	nextID ID
	items  []Item
	pos    map[ID]int

	byText map[string][]*Entry
	bySlug map[string]*Entry
}

// New creates an empty dictionary. lexicalTags are the analysis tags that
// identify a lexeme; when empty, lemma determination is disabled.
func New(log *slog.Logger, lexicalTags []string) *Dictionary {
	if log == nil {
		log = slog.Default()
	}
	tags := make(map[string]bool, len(lexicalTags))
	for _, t := range lexicalTags {
		if t != "" {
			tags[t] = true
		}
	}
	return &Dictionary{
		log:         log,
		lexicalTags: tags,
		pos:         make(map[ID]int),
		byText:      make(map[string][]*Entry),
		bySlug:      make(map[string]*Entry),
	}
}

// Len returns the number of items.
func (d *Dictionary) Len() int { return len(d.items) }

// Items returns a snapshot of all items in insertion order.
func (d *Dictionary) Items() []Item {
	return slices.Clone(d.items)
}

// Get returns the item with the given handle.
func (d *Dictionary) Get(id ID) (Item, bool) {
	i, ok := d.pos[id]
	if !ok {
		return Item{}, false
	}
	return d.items[i], true
}

// Entry returns the entry with the given handle; wordforms are not returned.
func (d *Dictionary) Entry(id ID) (*Entry, bool) {
	it, ok := d.Get(id)
	if !ok || it.kind != KindEntry {
		return nil, false
	}
	return it.entry, true
}

// ByText returns the entries whose head is exactly text, in insertion order.
func (d *Dictionary) ByText(text string) []*Entry {
	return slices.Clone(d.byText[text])
}

// BySlug returns the entry that owns slug.
func (d *Dictionary) BySlug(slug string) (*Entry, bool) {
	e, ok := d.bySlug[slug]
	return e, ok
}

// Create appends a new entry for head.
func (d *Dictionary) Create(head string) *Entry {
	d.nextID++
	e := &Entry{id: d.nextID, head: head}
	d.pos[e.id] = len(d.items)
	d.items = append(d.items, Item{kind: KindEntry, entry: e})
	d.byText[head] = append(d.byText[head], e)
	return e
}

// GetOrCreate finds or creates the entry for head. With a slug, the entry
// owning that slug is returned, or a new entry is created and claims it; an
// existing owner with a different head is ErrHeadMismatch. Without a slug the
// first entry with that head is returned, or a new one is created.
func (d *Dictionary) GetOrCreate(head, slug string) (*Entry, error) {
	if slug != "" {
		if e, ok := d.bySlug[slug]; ok {
			if e.head != head {
				return nil, fmt.Errorf("slug %q belongs to %q, not %q: %w", slug, e.head, head, domain.ErrHeadMismatch)
			}
			return e, nil
		}
		e := d.Create(head)
		if err := d.SetSlug(e, slug); err != nil {
			return nil, err
		}
		return e, nil
	}

	if existing := d.byText[head]; len(existing) > 0 {
		return existing[0], nil
	}
	return d.Create(head), nil
}

// SetSlug assigns slug to e. A slug can be set once per entry and must not be
// owned by another entry.
func (d *Dictionary) SetSlug(e *Entry, slug string) error {
	if slug == "" {
		return domain.NewValidationError("slug", "required")
	}
	if owner, ok := d.bySlug[slug]; ok && owner != e {
		return fmt.Errorf("slug %q already owned by %q: %w", slug, owner.head, domain.ErrSlugConflict)
	}
	if e.slug != "" && e.slug != slug {
		return fmt.Errorf("entry %q already has slug %q: %w", e.head, e.slug, domain.ErrSlugConflict)
	}
	e.slug = slug
	d.bySlug[slug] = e
	return nil
}

// AddWordform appends a wordform linked to the entry lemma.
func (d *Dictionary) AddWordform(lemma *Entry, head string, analysis *domain.Analysis) (*Wordform, error) {
	if _, ok := d.Entry(lemma.id); !ok {
		return nil, fmt.Errorf("wordform %q: lemma %q not in dictionary: %w", head, lemma.head, domain.ErrNotFound)
	}
	d.nextID++
	w := &Wordform{id: d.nextID, head: head, formOf: lemma.id, Analysis: analysis}
	d.pos[w.id] = len(d.items)
	d.items = append(d.items, Item{kind: KindWordform, wordform: w})
	return w, nil
}

// Remove deletes the item with the given handle. Removing an entry also
// removes the wordforms linked to it. It returns the number of items removed.
func (d *Dictionary) Remove(id ID) int {
	it, ok := d.Get(id)
	if !ok {
		return 0
	}

	doomed := map[ID]bool{id: true}
	if it.kind == KindEntry {
		for _, other := range d.items {
			if other.kind == KindWordform && other.wordform.formOf == id {
				doomed[other.wordform.id] = true
			}
		}
		d.unindex(it.entry)
	}

	d.items = slices.DeleteFunc(d.items, func(it Item) bool {
		return doomed[it.ID()]
	})
	d.reindex()
	return len(doomed)
}

// RemoveSource strips src from every item's senses.
func (d *Dictionary) RemoveSource(src string) {
	for _, it := range d.items {
		switch it.kind {
		case KindEntry:
			it.entry.RemoveSource(src)
		case KindWordform:
			it.wordform.RemoveSource(src)
		}
	}
}

func (d *Dictionary) unindex(e *Entry) {
	d.byText[e.head] = slices.DeleteFunc(d.byText[e.head], func(x *Entry) bool { return x == e })
	if len(d.byText[e.head]) == 0 {
		delete(d.byText, e.head)
	}
	if e.slug != "" && d.bySlug[e.slug] == e {
		delete(d.bySlug, e.slug)
	}
}

func (d *Dictionary) reindex() {
	clear(d.pos)
	for i, it := range d.items {
		d.pos[it.ID()] = i
	}
}

// demote replaces entry e in place with a wordform of lemma, carrying over
// head, analysis and senses. The handle is kept.
func (d *Dictionary) demote(e, lemma *Entry) *Wordform {
	w := &Wordform{
		senses:   senses{list: e.list},
		id:       e.id,
		head:     e.head,
		formOf:   lemma.id,
		Analysis: e.Analysis,
	}
	d.unindex(e)
	d.items[d.pos[e.id]] = Item{kind: KindWordform, wordform: w}

	// Wordforms that pointed at the demoted entry follow it to the new lemma.
	for _, it := range d.items {
		if it.kind == KindWordform && it.wordform.formOf == e.id {
			it.wordform.formOf = lemma.id
		}
	}
	return w
}
