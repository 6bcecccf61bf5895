package jsonl

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func testdataPath(t *testing.T, name string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

func TestParse(t *testing.T) {
	records, stats, err := Parse(testdataPath(t, "sample.jsonl"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if stats.TotalLines != 7 {
		t.Errorf("TotalLines = %d, want 7", stats.TotalLines)
	}
	if stats.MalformedLines != 1 {
		t.Errorf("MalformedLines = %d, want 1", stats.MalformedLines)
	}
	if stats.EmptyHeads != 1 {
		t.Errorf("EmptyHeads = %d, want 1", stats.EmptyHeads)
	}
	if len(records) != 4 || stats.Records != 4 {
		t.Fatalf("got %d records (stats %d), want 4", len(records), stats.Records)
	}

	nipaw := records[0]
	if nipaw.Head != "nipâw" || nipaw.Paradigm != "VAI" || nipaw.POS != "V" {
		t.Errorf("nipâw = %+v", nipaw)
	}
	if len(nipaw.Definitions) != 2 || nipaw.Definitions[1] != "s/he is asleep" {
		t.Errorf("nipâw definitions = %q", nipaw.Definitions)
	}

	if got := records[1].Definitions; len(got) != 1 || got[0] != "dog" {
		t.Errorf("atim definitions = %q, want [dog]", got)
	}

	happy := records[2]
	if happy.FSTLemma != "ni'i3ecoo-" || happy.Analysis != "ni'i3ecoo-+V+AI+3SG" {
		t.Errorf("ni'i3ecoot = %+v", happy)
	}

	if len(records[3].Definitions) != 0 {
		t.Errorf("kîkway definitions = %q, want none", records[3].Definitions)
	}
}

func TestParse_MissingFile(t *testing.T) {
	if _, _, err := Parse(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Empty(t *testing.T) {
	records, stats, err := parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 0 || stats.TotalLines != 0 {
		t.Errorf("records = %v, stats = %+v", records, stats)
	}
}
