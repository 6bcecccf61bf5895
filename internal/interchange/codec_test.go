package interchange

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

func sense(def string, sources ...string) domain.Sense {
	return domain.Sense{Definition: def, Sources: sources}
}

func TestSort_LemmaBeforeItsWordforms(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Head: "nii'i3ecoot", Senses: []domain.Sense{sense("x", "A")}, FormOf: "ni'i3ecoot"},
		{Head: "zzz", Senses: []domain.Sense{sense("z", "A")}, Slug: "zzz"},
		{Head: "ni'i3ecoono'", Senses: []domain.Sense{sense("y", "A")}, FormOf: "ni'i3ecoot"},
		{Head: "ni'i3ecoot", Senses: []domain.Sense{sense("w", "A")}, Slug: "ni'i3ecoot"},
	}
	Sort(records)

	heads := make([]string, len(records))
	for i, r := range records {
		heads[i] = r.Head
	}
	assert.Equal(t, []string{"ni'i3ecoot", "ni'i3ecoono'", "nii'i3ecoot", "zzz"}, heads)
}

func TestSort_UsesDecomposedForm(t *testing.T) {
	t.Parallel()

	// Under NFD "â" is "a" followed by a combining mark, so it sorts right
	// after plain "a" rather than after "z".
	records := []Record{
		{Head: "z", Slug: "z"},
		{Head: "âb", Slug: "âb"},
		{Head: "a", Slug: "a"},
	}
	Sort(records)

	assert.Equal(t, "a", records[0].Slug)
	assert.Equal(t, "âb", records[1].Slug)
	assert.Equal(t, "z", records[2].Slug)
}

func TestSort_IndependentOfInputOrder(t *testing.T) {
	t.Parallel()

	an1 := &domain.Analysis{Lemma: "a", SuffixTags: []string{"+V"}}
	an2 := &domain.Analysis{Lemma: "a", SuffixTags: []string{"+N"}}
	forward := []Record{
		{Head: "a", Slug: "a"},
		{Head: "b", Analysis: an1, FormOf: "a"},
		{Head: "b", Analysis: an2, FormOf: "a"},
	}
	backward := []Record{forward[2], forward[1], forward[0]}

	Sort(forward)
	Sort(backward)
	assert.Equal(t, forward, backward)
}

func TestEncode_Format(t *testing.T) {
	t.Parallel()

	records := []Record{{
		Head:     "nipâw",
		Analysis: &domain.Analysis{Lemma: "nipâw", SuffixTags: []string{"+V", "+AI"}},
		Paradigm: "VAI",
		Senses:   []domain.Sense{sense("s/he sleeps <intr>", "CW", "MD")},
		Slug:     "nipâw",
	}}

	data, err := Marshal(records)
	require.NoError(t, err)

	want := `[
  {
    "head": "nipâw",
    "analysis": [
      [],
      "nipâw",
      [
        "+V",
        "+AI"
      ]
    ],
    "paradigm": "VAI",
    "senses": [
      {
        "definition": "s/he sleeps <intr>",
        "sources": [
          "CW",
          "MD"
        ]
      }
    ],
    "slug": "nipâw"
  }
]
`
	assert.Equal(t, want, string(data))
}

func TestEncode_Empty(t *testing.T) {
	t.Parallel()

	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	records := []Record{
		{
			Head:       "ni'i3ecoot",
			Analysis:   &domain.Analysis{Lemma: "ni'i3ecoo-", SuffixTags: []string{"+V", "+AI", "+3SG"}},
			Senses:     []domain.Sense{sense("s.he is happy", "ALD")},
			Slug:       "ni'i3ecoot",
			FSTLemma:   "ni'i3ecoo-",
			Linguistic: map[string]any{"pos": "vai", "stem": "ni'i3ecoo-"},
		},
		{
			Head:     "nii'i3ecoot",
			Analysis: &domain.Analysis{PrefixTags: []string{"IC+"}, Lemma: "ni'i3ecoo-", SuffixTags: []string{"+V", "+AI", "+3SG"}},
			Senses:   []domain.Sense{sense("when s.he is happy", "ALD")},
			FormOf:   "ni'i3ecoot",
		},
	}
	first, err := Marshal(records)
	require.NoError(t, err)

	decoded, err := Decode(bytes.NewReader(first))
	require.NoError(t, err)
	second, err := Marshal(decoded)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		isErr error
	}{
		{
			name:  "lemma without slug",
			input: `[{"head":"a","senses":[]}]`,
			isErr: domain.ErrValidation,
		},
		{
			name:  "duplicate slug",
			input: `[{"head":"a","senses":[],"slug":"a"},{"head":"a","senses":[],"slug":"a"}]`,
			isErr: domain.ErrSlugConflict,
		},
		{
			name:  "dangling formOf",
			input: `[{"head":"b","senses":[],"formOf":"nope"}]`,
			isErr: domain.ErrUnresolvedFormOf,
		},
		{
			name:  "wordform with slug",
			input: `[{"head":"a","senses":[],"slug":"a"},{"head":"b","senses":[],"slug":"b","formOf":"a"}]`,
			isErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.isErr)
		})
	}
}

func TestDecode_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`[{"head":"a","senses":[],"slug":"a","bogus":1}]`))
	require.Error(t, err)
}
