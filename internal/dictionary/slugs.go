package dictionary

import (
	"fmt"

	"github.com/heartmarshall/lexibuild/internal/interchange"
	"github.com/heartmarshall/lexibuild/internal/slug"
)

// DescriptorFunc returns the part-of-speech-like label used to tell
// homographs apart.
type DescriptorFunc func(*Entry) string

// DefaultDescriptor uses the paradigm, then the "pos" key of the linguistic
// info, then nothing.
func DefaultDescriptor(e *Entry) string {
	if e.Paradigm != "" {
		return e.Paradigm
	}
	if pos, ok := e.Linguistic["pos"].(string); ok {
		return pos
	}
	return ""
}

// AssignSlugs gives every entry without a slug one derived from its head.
// Entries sharing a base slug are disambiguated with descriptor; a lone
// entry whose base slug is already owned is disambiguated against the owner.
// Entries that already carry a slug keep it. Producing a slug that is
// already owned is ErrSlugConflict.
func (d *Dictionary) AssignSlugs(descriptor DescriptorFunc) error {
	if descriptor == nil {
		descriptor = DefaultDescriptor
	}

	groups := make(map[string][]*Entry)
	var order []string
	for _, it := range d.items {
		if it.kind != KindEntry || it.entry.slug != "" {
			continue
		}
		base := slug.Base(it.entry.head)
		if _, ok := groups[base]; !ok {
			order = append(order, base)
		}
		groups[base] = append(groups[base], it.entry)
	}

	assigned := 0
	for _, base := range order {
		members := groups[base]

		if len(members) == 1 {
			owner, taken := d.bySlug[base]
			if !taken {
				if err := d.SetSlug(members[0], base); err != nil {
					return err
				}
				assigned++
				continue
			}
			suffixes, err := slug.Disambiguate([]string{descriptor(owner), descriptor(members[0])})
			if err != nil {
				return fmt.Errorf("slugs for %q: %w", base, err)
			}
			if err := d.SetSlug(members[0], base+suffixes[1]); err != nil {
				return err
			}
			assigned++
			continue
		}

		descs := make([]string, len(members))
		for i, e := range members {
			descs[i] = descriptor(e)
		}
		suffixes, err := slug.Disambiguate(descs)
		if err != nil {
			return fmt.Errorf("slugs for %q: %w", base, err)
		}
		for i, e := range members {
			if err := d.SetSlug(e, base+suffixes[i]); err != nil {
				return err
			}
			assigned++
		}
	}

	d.log.Debug("slugs assigned", "count", assigned, "groups", len(order))
	return nil
}

// PinSlugs copies slugs from a previously published build onto matching
// entries so that links stay stable across rebuilds. An entry matches a
// previous lemma record when head and paradigm are equal and exactly one
// unslugged entry qualifies. It returns the number of pinned slugs.
func (d *Dictionary) PinSlugs(previous []interchange.Record) int {
	pinned := 0
	for _, rec := range previous {
		if rec.IsWordform() || rec.Slug == "" {
			continue
		}
		if _, taken := d.bySlug[rec.Slug]; taken {
			continue
		}

		var match *Entry
		candidates := 0
		for _, e := range d.byText[rec.Head] {
			if e.slug == "" && e.Paradigm == rec.Paradigm {
				match = e
				candidates++
			}
		}
		if candidates != 1 {
			continue
		}
		if err := d.SetSlug(match, rec.Slug); err != nil {
			d.log.Warn("pin slug", "slug", rec.Slug, "error", err)
			continue
		}
		pinned++
	}
	return pinned
}
