package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAnalysis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Analysis
	}{
		{
			name: "suffixes only",
			in:   "ni'i3ecoo-+V+AI+3SG",
			want: Analysis{Lemma: "ni'i3ecoo-", SuffixTags: []string{"+V", "+AI", "+3SG"}},
		},
		{
			name: "initial change prefix",
			in:   "IC+ni'i3ecoo-+V+AI",
			want: Analysis{PrefixTags: []string{"IC+"}, Lemma: "ni'i3ecoo-", SuffixTags: []string{"+V", "+AI"}},
		},
		{
			name: "preverb prefix",
			in:   "PV/e+IC+nipâw+V+AI+Cnj+3Sg",
			want: Analysis{
				PrefixTags: []string{"PV/e+", "IC+"},
				Lemma:      "nipâw",
				SuffixTags: []string{"+V", "+AI", "+Cnj", "+3Sg"},
			},
		},
		{
			name: "capitalised lemma is not a prefix",
			in:   "Hinono'ei+N+Prop",
			want: Analysis{Lemma: "Hinono'ei", SuffixTags: []string{"+N", "+Prop"}},
		},
		{
			name: "bare lemma",
			in:   "hee",
			want: Analysis{Lemma: "hee"},
		},
		{
			name: "all caps single token is the lemma",
			in:   "IC",
			want: Analysis{Lemma: "IC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAnalysis(tt.in)
			if err != nil {
				t.Fatalf("ParseAnalysis(%q): %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseAnalysis(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestParseAnalysis_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "+V+AI", "lemma++V"} {
		if _, err := ParseAnalysis(in); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseAnalysis(%q) err = %v, want ErrValidation", in, err)
		}
	}
}

func TestAnalysis_JSON(t *testing.T) {
	t.Parallel()

	a := Analysis{PrefixTags: []string{"IC+"}, Lemma: "ni'i3ecoo-", SuffixTags: []string{"+V", "+AI"}}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `[["IC+"],"ni'i3ecoo-",["+V","+AI"]]` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var back Analysis
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(a) {
		t.Errorf("round trip = %#v, want %#v", back, a)
	}

	empty, err := json.Marshal(Analysis{Lemma: "hee"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(empty) != `[[],"hee",[]]` {
		t.Errorf("empty tag lists should encode as [], got %s", empty)
	}
}

func TestAnalysis_UnmarshalWrongArity(t *testing.T) {
	t.Parallel()

	var a Analysis
	err := json.Unmarshal([]byte(`[[],"hee"]`), &a)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAnalysis_Tags(t *testing.T) {
	t.Parallel()

	a := Analysis{PrefixTags: []string{"IC+"}, Lemma: "x", SuffixTags: []string{"+V"}}
	tags := a.Tags()
	if len(tags) != 2 || tags[0] != "IC+" || tags[1] != "+V" {
		t.Errorf("Tags() = %v", tags)
	}
}
