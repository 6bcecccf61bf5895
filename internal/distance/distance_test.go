package distance

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "a", b: "a", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "one deletion", a: "ax", b: "a", want: 1},
		{name: "one insertion", a: "a", b: "ax", want: 1},
		{name: "circumflex close", a: "â", b: "a", want: 0.2},
		{name: "decomposed circumflex close", a: "a\u0302", b: "a", want: 0.2},
		{name: "case close", a: "A", b: "a", want: 0.2},
		{name: "barred l close", a: "ł", b: "l", want: 0.2},
		{name: "all different", a: "foo", b: "bar", want: 3},
		{name: "twiddle", a: "hello world", b: "hello wordl", want: 1},
		{name: "from empty", a: "", b: "abc", want: 3},
		{name: "swap only", a: "ab", b: "ba", want: 1},
		{name: "two close letters", a: "âcimôw", b: "acimow", want: 0.4},
		{name: "lemma hyphen", a: "ni'i3ecoot", b: "ni'i3ecoo-", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Distance(tt.a, tt.b); !approx(got, tt.want) {
				t.Errorf("Distance(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDistance_NonNegative(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"nipâw", "nipaw"}, {"ab", "ba"}, {"", "x"}, {"ʔ", "'"}, {"\u0301", "a"},
	}
	for _, p := range pairs {
		if d := Distance(p[0], p[1]); d < 0 {
			t.Errorf("Distance(%q, %q) = %v < 0", p[0], p[1], d)
		}
	}
}

func TestMetric_CustomTable(t *testing.T) {
	t.Parallel()

	m := New(map[rune]string{'ʔ': "'"})
	if got := m.Distance("ʔ", "'"); !approx(got, CloseMatchCost) {
		t.Errorf("custom close match = %v, want %v", got, CloseMatchCost)
	}
	// The custom table replaces the defaults.
	if got := m.Distance("ł", "l"); !approx(got, EditCost) {
		t.Errorf("barred l without default table = %v, want %v", got, EditCost)
	}
}

func TestDistance_LoneCombiningMarkIsNotClose(t *testing.T) {
	t.Parallel()

	// A bare combining mark strips to nothing and must not match another
	// bare mark as "close".
	if got := Distance("\u0301", "\u0300"); !approx(got, EditCost) {
		t.Errorf("Distance of two lone marks = %v, want %v", got, EditCost)
	}
}
