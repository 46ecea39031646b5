package blaze

import (
	"path/filepath"
	"testing"
)

func TestIDTableInternIsDenseAndStable(t *testing.T) {
	tbl := NewIDTable()
	a := tbl.Intern("https://x/a")
	b := tbl.Intern("https://x/b")
	again := tbl.Intern("https://x/a")

	if a != 0 || b != 1 {
		t.Fatalf("expected dense ids 0,1; got %d,%d", a, b)
	}
	if again != a {
		t.Fatalf("Intern on a known string returned a new id: %d != %d", again, a)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
}

func TestIDTableLookupOutOfRange(t *testing.T) {
	tbl := NewIDTable()
	tbl.Intern("https://x/a")
	if _, ok := tbl.Lookup(5); ok {
		t.Fatal("expected Lookup to fail for an id that was never assigned")
	}
}

func TestIDTableSaveLoadRoundTrip(t *testing.T) {
	tbl := NewIDTable()
	tbl.Intern("https://x/a")
	tbl.Intern("https://x/b")
	tbl.Intern("https://x/c")

	path := filepath.Join(t.TempDir(), "urls.json")
	if err := tbl.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadIDTable(path)
	if err != nil {
		t.Fatalf("LoadIDTable: %v", err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("loaded table has %d entries, want 3", loaded.Len())
	}
	for id := int32(0); id < 3; id++ {
		want, _ := tbl.Lookup(id)
		got, ok := loaded.Lookup(id)
		if !ok || got != want {
			t.Fatalf("id %d: got %q, want %q", id, got, want)
		}
	}
}
