package blaze

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMergePartialIndexesCombinesAndSorts(t *testing.T) {
	dir := t.TempDir()

	p1 := NewPartialIndex()
	p1.Add(0, map[string]float64{"zebra": 1.0, "apple": 0.5})
	p2 := NewPartialIndex()
	p2.Add(1, map[string]float64{"apple": 0.25, "mango": 1.0})

	i1, o1 := filepath.Join(dir, "p1.bin"), filepath.Join(dir, "p1.off.bin")
	i2, o2 := filepath.Join(dir, "p2.bin"), filepath.Join(dir, "p2.off.bin")
	if err := p1.Write(i1, o1); err != nil {
		t.Fatalf("p1.Write: %v", err)
	}
	if err := p2.Write(i2, o2); err != nil {
		t.Fatalf("p2.Write: %v", err)
	}

	finalIndex := filepath.Join(dir, "posting.bin")
	finalOffsets := filepath.Join(dir, "offsets.bin")
	if err := MergePartialIndexes([]string{i1, i2}, []string{o1, o2}, finalIndex, finalOffsets); err != nil {
		t.Fatalf("MergePartialIndexes: %v", err)
	}

	// Partial files must be deleted on success.
	for _, p := range []string{i1, o1, i2, o2} {
		if _, err := os.Stat(p); err == nil {
			t.Fatalf("partial file %s should have been deleted after merge", p)
		}
	}

	offsets, err := LoadOffsetMap(finalOffsets)
	if err != nil {
		t.Fatalf("LoadOffsetMap: %v", err)
	}
	if len(offsets) != 3 {
		t.Fatalf("expected 3 distinct terms in merged offset map, got %d", len(offsets))
	}

	urls := NewIDTable()
	urls.Intern("https://x/0")
	urls.Intern("https://x/1")
	if err := urls.Save(filepath.Join(dir, "urls.json")); err != nil {
		t.Fatalf("saving url table: %v", err)
	}
	files := NewIDTable()
	files.Intern("doc0.json")
	files.Intern("doc1.json")
	if err := files.Save(filepath.Join(dir, "files.json")); err != nil {
		t.Fatalf("saving file table: %v", err)
	}

	reader, err := OpenIndexReader(dir, ReaderOptions{})
	if err != nil {
		t.Fatalf("OpenIndexReader: %v", err)
	}

	if _, ok := offsets["apple"]; !ok {
		t.Fatal("missing merged offset for 'apple'")
	}

	postings, err := reader.PostingsForTerm("apple")
	if err != nil {
		t.Fatalf("PostingsForTerm: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("apple should have postings from both partials, got %d", len(postings))
	}
	seen := map[int32]bool{}
	for _, p := range postings {
		seen[p.DocID] = true
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("expected postings for doc 0 and doc 1, got %v", postings)
	}
}
