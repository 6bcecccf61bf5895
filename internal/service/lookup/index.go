package lookup

import (
	"cmp"
	"slices"
	"strings"

	"github.com/heartmarshall/lexibuild/internal/distance"
	"github.com/heartmarshall/lexibuild/internal/domain"
	"github.com/heartmarshall/lexibuild/internal/interchange"
)

// DefaultLimit is used when Closest is called with a non-positive limit.
const DefaultLimit = 10

// Match is one lookup result. Slug is the lemma the matched head resolves to.
type Match struct {
	domain.Headword
	Distance float64
}

// Index ranks headwords by their distance to a query.
// An Index is immutable and safe for concurrent use.
type Index struct {
	metric    *distance.Metric
	headwords []domain.Headword
}

// NewIndex creates an Index over headwords. A nil metric means the default
// distance table.
func NewIndex(metric *distance.Metric, headwords []domain.Headword) *Index {
	if metric == nil {
		metric = distance.New(nil)
	}
	return &Index{metric: metric, headwords: slices.Clone(headwords)}
}

// IndexRecords creates an Index over the heads of interchange records.
func IndexRecords(records []interchange.Record) *Index {
	heads := make([]domain.Headword, 0, len(records))
	for _, r := range records {
		if r.IsWordform() {
			heads = append(heads, domain.Headword{Head: r.Head, Slug: r.FormOf, Wordform: true})
		} else {
			heads = append(heads, domain.Headword{Head: r.Head, Slug: r.Slug})
		}
	}
	return NewIndex(nil, heads)
}

// Len returns the number of indexed headwords.
func (ix *Index) Len() int {
	return len(ix.headwords)
}

// Closest returns up to limit matches ordered by distance, then slug, then
// head. Each lemma appears at most once, through its closest head; a lemma
// head wins over an equally close wordform.
func (ix *Index) Closest(query string, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || len(ix.headwords) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	best := make(map[string]Match, len(ix.headwords))
	for _, h := range ix.headwords {
		m := Match{Headword: h, Distance: ix.metric.Distance(query, h.Head)}
		if cur, ok := best[h.Slug]; ok && compare(cur, m) <= 0 {
			continue
		}
		best[h.Slug] = m
	}

	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	slices.SortFunc(matches, compare)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func compare(a, b Match) int {
	return cmp.Or(
		cmp.Compare(a.Distance, b.Distance),
		cmp.Compare(a.Slug, b.Slug),
		boolCompare(a.Wordform, b.Wordform),
		cmp.Compare(a.Head, b.Head),
	)
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
