package domain

import (
	"strings"
)

// NormalizeText prepares a headword or definition read from a source file:
//   - trims leading/trailing whitespace
//   - compresses runs of spaces and tabs into one space
//
// Case, diacritics, hyphens, and apostrophes are preserved: in fieldwork
// orthographies they are contrastive.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' || r == '\t' {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteByte(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
