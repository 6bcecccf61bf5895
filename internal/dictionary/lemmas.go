package dictionary

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/lexibuild/internal/distance"
	"github.com/heartmarshall/lexibuild/internal/domain"
)

// TieBreaker names the head that wins lemma election for one lexeme. Tags
// may be left empty to match the lemma with any lexical tag set.
type TieBreaker struct {
	Lemma string   `yaml:"lemma"`
	Tags  []string `yaml:"tags"`
	Head  string   `yaml:"head"`
}

// TieBreakers is a lookup of curated lemma elections.
type TieBreakers struct {
	heads map[string]string
}

// NewTieBreakers indexes the given overrides. Later duplicates win.
func NewTieBreakers(list []TieBreaker) TieBreakers {
	tb := TieBreakers{heads: make(map[string]string, len(list))}
	for _, t := range list {
		tb.heads[lexemeKey(t.Lemma, normalizeTags(t.Tags))] = t.Head
	}
	return tb
}

// LoadTieBreakers reads a YAML list of TieBreaker from path. An empty path
// yields an empty table.
func LoadTieBreakers(path string) (TieBreakers, error) {
	if path == "" {
		return NewTieBreakers(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return TieBreakers{}, fmt.Errorf("read tie-breakers: %w", err)
	}
	var list []TieBreaker
	if err := yaml.Unmarshal(data, &list); err != nil {
		return TieBreakers{}, fmt.Errorf("parse tie-breakers %s: %w", path, err)
	}
	for i, t := range list {
		if t.Lemma == "" || t.Head == "" {
			return TieBreakers{}, fmt.Errorf("tie-breaker %d: %w", i,
				domain.NewValidationError("lemma/head", "both required"))
		}
	}
	return NewTieBreakers(list), nil
}

// Len returns the number of overrides.
func (t TieBreakers) Len() int { return len(t.heads) }

// Preferred returns the curated head for a lexeme, checking the exact tag
// set before the tagless wildcard.
func (t TieBreakers) Preferred(lemma string, tags []string) (string, bool) {
	if h, ok := t.heads[lexemeKey(lemma, tags)]; ok {
		return h, true
	}
	h, ok := t.heads[lexemeKey(lemma, nil)]
	return h, ok
}

func normalizeTags(tags []string) []string {
	out := slices.Clone(tags)
	slices.Sort(out)
	return slices.Compact(out)
}

func lexemeKey(lemma string, sortedTags []string) string {
	return lemma + "\x00" + strings.Join(sortedTags, "\x00")
}

// lexicalTagsOf returns the sorted unique tags of a that are lexical.
func (d *Dictionary) lexicalTagsOf(a *domain.Analysis) []string {
	var out []string
	for _, tag := range a.Tags() {
		if d.lexicalTags[tag] {
			out = append(out, tag)
		}
	}
	return normalizeTags(out)
}

type lexemeGroup struct {
	lemma   string
	tags    []string
	members []*Entry
}

// DetermineLemmas groups analyzed entries by lexeme (effective lemma plus
// lexical tags) and keeps one entry per group as the lemma. The winner is the
// member whose head is closest to the effective lemma; ties go to the first
// member unless tieBreakers names one. Losers become wordforms of the winner
// in place. Running it again changes nothing.
func (d *Dictionary) DetermineLemmas(tieBreakers TieBreakers) error {
	if len(d.lexicalTags) == 0 {
		return domain.ErrLemmasDisabled
	}

	groups := make(map[string]*lexemeGroup)
	var order []string
	for _, it := range d.items {
		if it.kind != KindEntry || it.entry.Analysis == nil {
			continue
		}
		e := it.entry
		lemma := e.EffectiveLemma()
		tags := d.lexicalTagsOf(e.Analysis)
		key := lexemeKey(lemma, tags)
		g, ok := groups[key]
		if !ok {
			g = &lexemeGroup{lemma: lemma, tags: tags}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, e)
	}

	demoted := 0
	for _, key := range order {
		g := groups[key]
		if len(g.members) < 2 {
			continue
		}
		winner := d.elect(g, tieBreakers)
		for _, e := range g.members {
			if e == winner {
				continue
			}
			d.demote(e, winner)
			demoted++
		}
	}

	d.log.Debug("lemmas determined", "lexemes", len(order), "demoted", demoted)
	return nil
}

func (d *Dictionary) elect(g *lexemeGroup, tieBreakers TieBreakers) *Entry {
	if head, ok := tieBreakers.Preferred(g.lemma, g.tags); ok {
		for _, e := range g.members {
			if e.head == head {
				return e
			}
		}
		d.log.Warn("tie-breaker head not among candidates",
			"lemma", g.lemma, "tags", g.tags, "head", head)
	}

	best := g.members[0]
	bestDist := distance.Distance(best.head, g.lemma)
	tied := false
	for _, e := range g.members[1:] {
		dist := distance.Distance(e.head, g.lemma)
		switch {
		case dist < bestDist:
			best, bestDist, tied = e, dist, false
		case dist == bestDist:
			tied = true
		}
	}
	if tied {
		heads := make([]string, 0, len(g.members))
		for _, e := range g.members {
			if distance.Distance(e.head, g.lemma) == bestDist {
				heads = append(heads, e.head)
			}
		}
		d.log.Info("lemma election tie, keeping first",
			"lemma", g.lemma, "tags", g.tags, "candidates", heads, "chosen", best.head)
	}
	return best
}
