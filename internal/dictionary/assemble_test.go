package dictionary

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexibuild/internal/domain"
	"github.com/heartmarshall/lexibuild/internal/interchange"
)

var lexicalTags = []string{"+V", "+AI"}

type seed struct {
	head     string
	paradigm string
	analysis string
	def      string
}

func build(t *testing.T, seeds []seed) *Dictionary {
	t.Helper()

	d := New(discardLogger(), lexicalTags)
	for _, s := range seeds {
		e := d.Create(s.head)
		e.Paradigm = s.paradigm
		if s.analysis != "" {
			a, err := domain.ParseAnalysis(s.analysis)
			require.NoError(t, err)
			e.Analysis = &a
		}
		if s.def != "" {
			e.AddSense(s.def, "ALD")
		}
	}
	return d
}

var happySeeds = []seed{
	{head: "ni'i3ecoot", analysis: "ni'i3ecoo-+V+AI+3SG", def: "s.he is happy"},
	{head: "nii'i3ecoot", analysis: "IC+ni'i3ecoo-+V+AI+3SG", def: "when s.he is happy"},
	{head: "ni'i3ecoono'", analysis: "ni'i3ecoo-+V+AI+1PL", def: "we are happy"},
}

func TestAssemble_ElectsClosestLemma(t *testing.T) {
	t.Parallel()

	d := build(t, happySeeds)
	res, err := d.Assemble(AssembleOptions{})
	require.NoError(t, err)

	require.Len(t, res.Records, 3)
	assert.Equal(t, 1, res.Lemmas)
	assert.Equal(t, 2, res.Wordforms)

	lemma := res.Records[0]
	assert.Equal(t, "ni'i3ecoot", lemma.Head)
	assert.Equal(t, "ni'i3ecoot", lemma.Slug)
	assert.False(t, lemma.IsWordform())

	assert.Equal(t, "ni'i3ecoono'", res.Records[1].Head)
	assert.Equal(t, "nii'i3ecoot", res.Records[2].Head)
	for _, wf := range res.Records[1:] {
		assert.Equal(t, "ni'i3ecoot", wf.FormOf)
		assert.Empty(t, wf.Slug)
	}
	assert.Equal(t, []domain.Sense{{Definition: "when s.he is happy", Sources: []string{"ALD"}}}, res.Records[2].Senses)

	require.NoError(t, interchange.ValidateAll(res.Records))
}

func TestDetermineLemmas_Idempotent(t *testing.T) {
	t.Parallel()

	d := build(t, happySeeds)
	require.NoError(t, d.DetermineLemmas(TieBreakers{}))
	first := kinds(d)
	require.NoError(t, d.DetermineLemmas(TieBreakers{}))

	assert.Equal(t, first, kinds(d))
	assert.Equal(t, []Kind{KindEntry, KindWordform, KindWordform}, first)
}

func TestDetermineLemmas_KeepsPositionsAndHandles(t *testing.T) {
	t.Parallel()

	d := build(t, happySeeds)
	before := d.Items()
	require.NoError(t, d.DetermineLemmas(TieBreakers{}))
	after := d.Items()

	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID(), after[i].ID())
		assert.Equal(t, before[i].Head(), after[i].Head())
	}
	assert.Equal(t, before[0].ID(), after[1].Wordform().FormOf())
	assert.Empty(t, d.ByText("nii'i3ecoot"))
}

func TestDetermineLemmas_Disabled(t *testing.T) {
	t.Parallel()

	d := New(discardLogger(), nil)
	assert.ErrorIs(t, d.DetermineLemmas(TieBreakers{}), domain.ErrLemmasDisabled)

	// Assemble skips the pass instead of failing.
	e := d.Create("atim")
	e.AddSense("dog", "MD")
	res, err := d.Assemble(AssembleOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
}

func TestDetermineLemmas_SeparatesLexemesByTags(t *testing.T) {
	t.Parallel()

	d := build(t, []seed{
		{head: "a1", analysis: "x+V+AI", def: "one"},
		{head: "a2", analysis: "x+V+TI", def: "two"},
		{head: "a3", analysis: "x+N", def: "three"},
	})
	require.NoError(t, d.DetermineLemmas(TieBreakers{}))
	// +V+AI and +V differ in lexical tags; +N has none.
	assert.Equal(t, []Kind{KindEntry, KindEntry, KindEntry}, kinds(d))
}

func TestDetermineLemmas_TieKeepsFirst(t *testing.T) {
	t.Parallel()

	seeds := []seed{
		{head: "abd", analysis: "abc+V+AI", def: "one"},
		{head: "abe", analysis: "abc+V+AI", def: "two"},
	}

	d := build(t, seeds)
	require.NoError(t, d.DetermineLemmas(TieBreakers{}))
	assert.Equal(t, []Kind{KindEntry, KindWordform}, kinds(d))

	d = build(t, seeds)
	tb := NewTieBreakers([]TieBreaker{{Lemma: "abc", Tags: []string{"+AI", "+V"}, Head: "abe"}})
	require.NoError(t, d.DetermineLemmas(tb))
	assert.Equal(t, []Kind{KindWordform, KindEntry}, kinds(d))
}

func TestDetermineLemmas_FSTLemmaOverridesAnalysis(t *testing.T) {
	t.Parallel()

	d := build(t, []seed{
		{head: "far", analysis: "zzz+V+AI", def: "one"},
		{head: "near", analysis: "zzz+V+AI", def: "two"},
	})
	for _, it := range d.Items() {
		it.Entry().FSTLemma = "near"
	}
	require.NoError(t, d.DetermineLemmas(TieBreakers{}))
	assert.Equal(t, []Kind{KindWordform, KindEntry}, kinds(d))
}

func TestAssignSlugs_Homographs(t *testing.T) {
	t.Parallel()

	d := New(discardLogger(), nil)
	v := d.Create("nipâw")
	v.Paradigm = "VAI"
	n := d.Create("nipâw")
	n.Paradigm = "NA"
	spaced := d.Create("kiya wiya")

	require.NoError(t, d.AssignSlugs(nil))
	assert.Equal(t, "nipâw@v", v.Slug())
	assert.Equal(t, "nipâw@n", n.Slug())
	assert.Equal(t, "kiya_wiya", spaced.Slug())
}

func TestAssignSlugs_LoneEntryAgainstPinnedOwner(t *testing.T) {
	t.Parallel()

	d := New(discardLogger(), nil)
	pinned, err := d.GetOrCreate("atim", "atim")
	require.NoError(t, err)
	pinned.Paradigm = "NA"
	fresh := d.Create("atim")
	fresh.Paradigm = "VAI"

	require.NoError(t, d.AssignSlugs(nil))
	assert.Equal(t, "atim", pinned.Slug())
	assert.Equal(t, "atim@v", fresh.Slug())
}

func TestAssignSlugs_ConflictIsFatal(t *testing.T) {
	t.Parallel()

	d := New(discardLogger(), nil)
	_, err := d.GetOrCreate("x", "a@n")
	require.NoError(t, err)
	n := d.Create("a")
	n.Paradigm = "NA"
	v := d.Create("a")
	v.Paradigm = "VAI"

	assert.ErrorIs(t, d.AssignSlugs(nil), domain.ErrSlugConflict)
}

func TestAssemble_DropsEntriesWithoutSenses(t *testing.T) {
	t.Parallel()

	d := build(t, []seed{
		{head: "lemma", analysis: "lemma+V+AI"},
		{head: "lemmas", analysis: "lemma+V+AI", def: "has a sense"},
		{head: "keep", def: "kept"},
		{head: "empty"},
	})
	res, err := d.Assemble(AssembleOptions{})
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "keep", res.Records[0].Head)
	assert.Equal(t, 3, res.Dropped)
}

func TestAssemble_LogsWordformsLostWithLemma(t *testing.T) {
	t.Parallel()

	d := build(t, []seed{
		{head: "lemma", analysis: "lemma+V+AI"},
		{head: "lemmas", analysis: "lemma+V+AI", def: "has a sense"},
	})
	var buf bytes.Buffer
	d.log = slog.New(slog.NewJSONHandler(&buf, nil))

	res, err := d.Assemble(AssembleOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	out := buf.String()
	assert.Contains(t, out, `"msg":"dropping wordform of dropped lemma","head":"lemmas","form_of":"lemma","senses":1`)
	assert.Contains(t, out, `"msg":"wordforms lost with their lemma","count":1`)
}

func TestAssemble_DeterministicAcrossInputOrder(t *testing.T) {
	t.Parallel()

	seeds := []seed{
		{head: "nipâw", paradigm: "VAI", analysis: "nipâw+V+AI+Ind+3Sg", def: "s/he sleeps"},
		{head: "ninipân", paradigm: "", analysis: "nipâw+V+AI+Ind+1Sg", def: "I sleep"},
		{head: "nipâw", paradigm: "NA", def: "sleeper"},
		{head: "atim", paradigm: "NA", def: "dog"},
		{head: "a/b c", def: "odd head"},
	}
	reversed := make([]seed, len(seeds))
	for i, s := range seeds {
		reversed[len(seeds)-1-i] = s
	}

	encode := func(in []seed) string {
		res, err := build(t, in).Assemble(AssembleOptions{})
		require.NoError(t, err)
		data, err := interchange.Marshal(res.Records)
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, encode(seeds), encode(reversed))
}

func TestFromRecords_RoundTrip(t *testing.T) {
	t.Parallel()

	res, err := build(t, happySeeds).Assemble(AssembleOptions{})
	require.NoError(t, err)
	first, err := interchange.Marshal(res.Records)
	require.NoError(t, err)

	loaded, err := FromRecords(discardLogger(), lexicalTags, res.Records)
	require.NoError(t, err)
	again, err := loaded.Assemble(AssembleOptions{})
	require.NoError(t, err)
	second, err := interchange.Marshal(again.Records)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFromRecords_Unresolved(t *testing.T) {
	t.Parallel()

	_, err := FromRecords(discardLogger(), nil, []interchange.Record{
		{Head: "b", Senses: []domain.Sense{}, FormOf: "missing"},
	})
	assert.ErrorIs(t, err, domain.ErrUnresolvedFormOf)
}

func TestPinSlugs(t *testing.T) {
	t.Parallel()

	d := New(discardLogger(), nil)
	a := d.Create("atim")
	a.Paradigm = "NA"
	b1 := d.Create("nipâw")
	b1.Paradigm = "VAI"
	b2 := d.Create("nipâw")
	b2.Paradigm = "VAI"

	n := d.PinSlugs([]interchange.Record{
		{Head: "atim", Paradigm: "NA", Slug: "atim@old"},
		{Head: "nipâw", Paradigm: "VAI", Slug: "nipâw@1"},
		{Head: "x", FormOf: "atim@old"},
	})

	assert.Equal(t, 1, n)
	assert.Equal(t, "atim@old", a.Slug())
	assert.Empty(t, b1.Slug(), "ambiguous match is not pinned")
	assert.Empty(t, b2.Slug())
}

func TestLoadTieBreakers(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ties.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- lemma: abc
  tags: ["+V", "+AI", "+V"]
  head: abe
- lemma: xyz
  head: xyy
`), 0o600))

	tb, err := LoadTieBreakers(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())

	h, ok := tb.Preferred("abc", []string{"+AI", "+V"})
	assert.True(t, ok)
	assert.Equal(t, "abe", h)

	h, ok = tb.Preferred("xyz", []string{"+N"})
	assert.True(t, ok, "tagless override matches any tags")
	assert.Equal(t, "xyy", h)

	_, ok = tb.Preferred("abc", []string{"+N"})
	assert.False(t, ok)

	empty, err := LoadTieBreakers("")
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func TestLoadTieBreakers_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ties.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- lemma: abc\n"), 0o600))

	_, err := LoadTieBreakers(path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func kinds(d *Dictionary) []Kind {
	items := d.Items()
	out := make([]Kind, len(items))
	for i, it := range items {
		out[i] = it.Kind()
	}
	return out
}
