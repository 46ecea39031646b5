package blaze

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// TestBuildIDDensityAndPostingsUniqueness exercises spec properties 1
// (dense, injective doc_ids) and 6 (no duplicate doc_id within a term's
// postings) across a build that spans multiple batches, forcing the
// external merger to actually combine partial indexes.
func TestBuildIDDensityAndPostingsUniqueness(t *testing.T) {
	dir := t.TempDir()

	members := map[string]string{}
	for i := 0; i < 9; i++ {
		name := filepath.Join("docs", zeroPad(i)+".json")
		members[name] = `{"url":"u` + zeroPad(i) + `","content":"<p>shared term unique` + zeroPad(i) + `</p>"}` + "\n"
	}

	archivePath := filepath.Join(dir, "corpus.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zw.Create: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zw.Close: %v", err)
	}
	f.Close()

	indexDir := filepath.Join(dir, "index")
	opts := DefaultBuilderOptions(indexDir)
	opts.BatchSize = 2 // force several partial indexes and a real merge
	b := NewBuilder(opts)
	if err := b.Build(archivePath); err != nil {
		t.Fatalf("Build: %v", err)
	}

	urls, err := LoadIDTable(filepath.Join(indexDir, "urls.json"))
	if err != nil {
		t.Fatalf("LoadIDTable: %v", err)
	}
	if urls.Len() != 9 {
		t.Fatalf("expected 9 documents, got %d", urls.Len())
	}
	seen := make(map[int32]bool)
	for id := int32(0); id < int32(urls.Len()); id++ {
		if _, ok := urls.Lookup(id); !ok {
			t.Fatalf("id %d missing from url table: density violated", id)
		}
		seen[id] = true
	}
	if len(seen) != 9 {
		t.Fatalf("expected dense id set {0..8}, got %v", seen)
	}

	reader, err := OpenIndexReader(indexDir, ReaderOptions{})
	if err != nil {
		t.Fatalf("OpenIndexReader: %v", err)
	}

	sharedPostings, err := reader.PostingsForTerm("share")
	if err != nil {
		t.Fatalf("PostingsForTerm(share): %v", err)
	}
	if len(sharedPostings) != 9 {
		t.Fatalf("expected 'share' to appear in all 9 documents, got %d", len(sharedPostings))
	}
	seenDocIDs := make(map[int32]bool, len(sharedPostings))
	for _, p := range sharedPostings {
		if seenDocIDs[p.DocID] {
			t.Fatalf("duplicate doc_id %d in postings for 'share'", p.DocID)
		}
		seenDocIDs[p.DocID] = true
	}
}

func zeroPad(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}
