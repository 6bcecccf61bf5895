package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Analysis is a morphological decomposition of a surface form as reported by
// the transducer. Prefix tags carry a trailing "+" ("IC+", "PV/e+"), suffix
// tags a leading one ("+V", "+AI").
type Analysis struct {
	PrefixTags []string
	Lemma      string
	SuffixTags []string
}

// Tags returns prefix tags followed by suffix tags.
func (a Analysis) Tags() []string {
	tags := make([]string, 0, len(a.PrefixTags)+len(a.SuffixTags))
	tags = append(tags, a.PrefixTags...)
	return append(tags, a.SuffixTags...)
}

// String renders the analysis in transducer notation, e.g. "IC+ni'i3ecoo-+V+AI".
func (a Analysis) String() string {
	return strings.Join(a.PrefixTags, "") + a.Lemma + strings.Join(a.SuffixTags, "")
}

// Equal reports whether both analyses have the same lemma and tag sequences.
func (a Analysis) Equal(b Analysis) bool {
	return a.Lemma == b.Lemma &&
		slices.Equal(a.PrefixTags, b.PrefixTags) &&
		slices.Equal(a.SuffixTags, b.SuffixTags)
}

// ParseAnalysis parses transducer notation: "+"-separated tokens where the
// leading tokens that look like prefix tags (contain "/" or are all upper-case
// letters and digits) are prefixes, the next token is the lemma and the rest
// are suffix tags.
func ParseAnalysis(s string) (Analysis, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Analysis{}, NewValidationError("analysis", "empty")
	}

	tokens := strings.Split(s, "+")
	i := 0
	var a Analysis
	for i < len(tokens)-1 && isPrefixTag(tokens[i]) {
		a.PrefixTags = append(a.PrefixTags, tokens[i]+"+")
		i++
	}

	a.Lemma = tokens[i]
	if a.Lemma == "" {
		return Analysis{}, NewValidationError("analysis", fmt.Sprintf("no lemma in %q", s))
	}

	for _, tok := range tokens[i+1:] {
		if tok == "" {
			return Analysis{}, NewValidationError("analysis", fmt.Sprintf("empty tag in %q", s))
		}
		a.SuffixTags = append(a.SuffixTags, "+"+tok)
	}
	return a, nil
}

func isPrefixTag(tok string) bool {
	if tok == "" {
		return false
	}
	if strings.Contains(tok, "/") {
		return true
	}
	for _, r := range tok {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return unicode.IsUpper([]rune(tok)[0])
}

// MarshalJSON encodes the analysis as [[prefixTags...], lemma, [suffixTags...]].
func (a Analysis) MarshalJSON() ([]byte, error) {
	prefix := a.PrefixTags
	if prefix == nil {
		prefix = []string{}
	}
	suffix := a.SuffixTags
	if suffix == nil {
		suffix = []string{}
	}
	return json.Marshal([]any{prefix, a.Lemma, suffix})
}

// UnmarshalJSON decodes the triple form written by MarshalJSON.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("analysis: want 3 elements, got %d: %w", len(raw), ErrValidation)
	}

	var out Analysis
	if err := json.Unmarshal(raw[0], &out.PrefixTags); err != nil {
		return fmt.Errorf("analysis prefix tags: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Lemma); err != nil {
		return fmt.Errorf("analysis lemma: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.SuffixTags); err != nil {
		return fmt.Errorf("analysis suffix tags: %w", err)
	}
	if len(out.PrefixTags) == 0 {
		out.PrefixTags = nil
	}
	if len(out.SuffixTags) == 0 {
		out.SuffixTags = nil
	}
	*a = out
	return nil
}
