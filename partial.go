// ═══════════════════════════════════════════════════════════════════════════════
// BATCH INDEXER: partial indexes
// ═══════════════════════════════════════════════════════════════════════════════
// One PartialIndex covers exactly one ingestion batch: an in-memory
// term → postings map built by Add, flushed to disk by Write as a sorted
// sequence of (term, postings) records plus a term → offset sidecar. The
// external merger (merge.go) deletes both files once it has consumed them.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"bufio"
	"os"
	"sort"
)

// PartialIndex accumulates postings for one batch of documents.
type PartialIndex struct {
	terms map[string][]Posting
}

// NewPartialIndex constructs an empty partial index.
func NewPartialIndex() *PartialIndex {
	return &PartialIndex{terms: make(map[string][]Posting)}
}

// Add records one document's normalized term frequencies against docID.
// Per spec, a single document contributes at most one posting per term, so
// callers must not call Add twice for the same docID.
func (p *PartialIndex) Add(docID int32, tfs map[string]float64) {
	for term, tf := range tfs {
		p.terms[term] = append(p.terms[term], Posting{DocID: docID, TF: float32(tf)})
	}
}

// Len reports the number of distinct terms accumulated so far.
func (p *PartialIndex) Len() int {
	return len(p.terms)
}

// Write flushes the partial index to indexPath in ascending lexicographic
// term order, and its term → byte-offset sidecar to offsetPath.
func (p *PartialIndex) Write(indexPath, offsetPath string) error {
	terms := make([]string, 0, len(p.terms))
	for term := range p.terms {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	f, err := os.Create(indexPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	offset, err := writePostingFileHeader(w)
	if err != nil {
		return err
	}

	offsets := make(OffsetMap, len(terms))
	for _, term := range terms {
		offsets[term] = offset
		n, err := writePostingRecord(w, term, p.terms[term])
		if err != nil {
			return err
		}
		offset += n
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return SaveOffsetMap(offsetPath, offsets)
}
