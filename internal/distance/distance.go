// Package distance implements the approximate string distance used to elect
// canonical lemmas and to rank fuzzy lookups. It is an edit distance where
// characters that differ only in diacritics or case are "close" and cost less
// than a full substitution, and adjacent transpositions cost one edit.
package distance

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Edit costs.
const (
	CloseMatchCost = 0.2
	EditCost       = 1.0
)

// DefaultExtraBases lists letters that have no canonical Unicode
// decomposition but should still count as close to a plain letter.
var DefaultExtraBases = map[rune]string{
	'ł': "l",
	'Ł': "l",
	'ø': "o",
	'Ø': "o",
	'đ': "d",
	'Đ': "d",
	'ı': "i",
	'ŧ': "t",
	'Ŧ': "t",
}

// Metric computes distances with a fixed table of extra base letters.
// A Metric is immutable and safe for concurrent use.
type Metric struct {
	extra map[rune]string
}

// New creates a Metric. A nil table means DefaultExtraBases.
func New(extra map[rune]string) *Metric {
	if extra == nil {
		extra = DefaultExtraBases
	}
	table := make(map[rune]string, len(extra))
	for r, base := range extra {
		table[r] = strings.ToLower(base)
	}
	return &Metric{extra: table}
}

var defaultMetric = New(nil)

// Distance returns the distance between a and b using DefaultExtraBases.
func Distance(a, b string) float64 {
	return defaultMetric.Distance(a, b)
}

// Distance fills the full (|a|+1)x(|b|+1) table over the runes of the
// NFC-composed inputs and returns its bottom-right cell.
func (m *Metric) Distance(a, b string) float64 {
	ra := []rune(norm.NFC.String(a))
	rb := []rune(norm.NFC.String(b))

	strip := newStripper()
	baseA := m.bases(strip, ra)
	baseB := m.bases(strip, rb)

	rows, cols := len(ra)+1, len(rb)+1
	table := make([][]float64, rows)
	for i := range table {
		table[i] = make([]float64, cols)
		table[i][0] = float64(i)
	}
	for j := range cols {
		table[0][j] = float64(j)
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			ca, cb := ra[i-1], rb[j-1]
			switch {
			case ca == cb:
				table[i][j] = table[i-1][j-1]
			case baseA[i-1] != "" && baseA[i-1] == baseB[j-1]:
				table[i][j] = table[i-1][j-1] + CloseMatchCost
			case i >= 2 && j >= 2 && ca == rb[j-2] && ra[i-2] == cb:
				table[i][j] = table[i-2][j-2] + EditCost
			default:
				table[i][j] = EditCost + min(table[i-1][j], table[i][j-1], table[i-1][j-1])
			}
		}
	}
	return table[rows-1][cols-1]
}

func newStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func (m *Metric) bases(strip transform.Transformer, rs []rune) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = m.base(strip, r)
	}
	return out
}

// base lower-cases r and strips its combining marks. Letters listed in the
// extra table map directly to their configured base, before or after
// stripping.
func (m *Metric) base(strip transform.Transformer, r rune) string {
	if b, ok := m.extra[r]; ok {
		return b
	}
	stripped, _, err := transform.String(strip, string(r))
	if err != nil {
		stripped = string(r)
	}
	stripped = strings.ToLower(stripped)
	if rs := []rune(stripped); len(rs) == 1 {
		if b, ok := m.extra[rs[0]]; ok {
			return b
		}
	}
	return stripped
}
