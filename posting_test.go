package blaze

import (
	"bufio"
	"bytes"
	"path/filepath"
	"testing"
)

func TestPostingRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if _, err := writePostingFileHeader(w); err != nil {
		t.Fatalf("writePostingFileHeader: %v", err)
	}

	postings := []Posting{{DocID: 0, TF: 0.5}, {DocID: 3, TF: 0.25}}
	if _, err := writePostingRecord(w, "alpha", postings); err != nil {
		t.Fatalf("writePostingRecord: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := bufio.NewReader(&buf)
	if err := readPostingFileHeader(r); err != nil {
		t.Fatalf("readPostingFileHeader: %v", err)
	}
	rec, err := readPostingRecord(r)
	if err != nil {
		t.Fatalf("readPostingRecord: %v", err)
	}
	if rec.Term != "alpha" {
		t.Fatalf("Term = %q, want alpha", rec.Term)
	}
	if len(rec.Postings) != 2 || rec.Postings[0].DocID != 0 || rec.Postings[1].DocID != 3 {
		t.Fatalf("Postings = %v", rec.Postings)
	}
}

func TestPostingFileHeaderRejectsBadMagic(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("XXXX\x01")))
	if err := readPostingFileHeader(r); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestOffsetMapSaveLoadRoundTrip(t *testing.T) {
	offsets := OffsetMap{"alpha": 0, "beta": 42, "gamma": 1000}
	path := filepath.Join(t.TempDir(), "offsets.bin")

	if err := SaveOffsetMap(path, offsets); err != nil {
		t.Fatalf("SaveOffsetMap: %v", err)
	}
	loaded, err := LoadOffsetMap(path)
	if err != nil {
		t.Fatalf("LoadOffsetMap: %v", err)
	}
	if len(loaded) != len(offsets) {
		t.Fatalf("loaded %d entries, want %d", len(loaded), len(offsets))
	}
	for term, offset := range offsets {
		if loaded[term] != offset {
			t.Fatalf("offset for %q = %d, want %d", term, loaded[term], offset)
		}
	}
}

func TestCountingWriterTracksBytes(t *testing.T) {
	var buf bytes.Buffer
	cw := &countingWriter{w: &buf}
	n, err := cw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 5 || cw.n != 5 {
		t.Fatalf("n=%d cw.n=%d, want 5,5", n, cw.n)
	}
}
