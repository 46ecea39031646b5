// Package blaze implements a disk-based inverted-index search engine.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS A DISK-BASED INVERTED INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// A normal inverted index lives entirely in memory: term → postings. That
// works until the corpus no longer fits in RAM. blaze splits the problem
// into two phases that never need the whole corpus in memory at once:
//
//  1. Build: ingest the corpus in bounded batches, tokenize and score each
//     document, write each batch out as a sorted "partial index" file, then
//     k-way merge all the partial indexes into one final posting file plus
//     a term → byte-offset map.
//  2. Search: open the final posting file and offset map read-only, look up
//     a handful of terms by seeking directly to their stored offset, and
//     rank the documents that satisfy a conjunctive query.
//
// Everything in between — the on-disk format, the merge, the cache — exists
// so that step 2 never has to load more than a few terms' worth of postings
// into memory, no matter how large the corpus was in step 1.
// ═══════════════════════════════════════════════════════════════════════════════
package blaze

import "errors"

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════
// We define errors as package-level variables so they can be compared with
// errors.Is. This is a Go best practice for sentinel error handling.
var (
	ErrBadArchive    = errors.New("archive is not a valid zip or is missing required members")
	ErrStaleOffset   = errors.New("decoded record did not match the expected term")
	ErrUnknownDocID  = errors.New("doc_id not present in the url table")
	ErrUnknownFileID = errors.New("file_id not present in the file table")
)

// Posting is a single (doc_id, normalized term frequency) pair. tf is always
// in [0,1]: the raw count of the term in the document divided by the total
// number of tokens (base + weighted) produced for that document.
type Posting struct {
	DocID int32
	TF    float32
}

// TermPostings pairs a term with its full postings list, in the shape both
// the partial-index writer and the final merged index read and write.
type TermPostings struct {
	Term     string
	Postings []Posting
}
