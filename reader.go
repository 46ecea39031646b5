// ═══════════════════════════════════════════════════════════════════════════════
// INDEX READER
// ═══════════════════════════════════════════════════════════════════════════════
// IndexReader is the query-time entry point over a completed index
// directory: it resolves terms to postings through the offset map and an
// LRU cache of decoded postings lists, and resolves doc/file ids back to
// the strings the builder interned them from.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultLRUCapacity is the number of decoded postings lists an
// IndexReader keeps cached.
const DefaultLRUCapacity = 100

// ReaderOptions configures an IndexReader.
type ReaderOptions struct {
	// LRUCapacity is the cache's entry capacity. Zero selects
	// DefaultLRUCapacity.
	LRUCapacity int
	// ArchivePath is the original archive, needed only for
	// DocumentTextFor. May be left empty if the caller never calls it.
	ArchivePath string
}

// DefaultReaderOptions returns sensible defaults for a reader over an index
// built from archivePath.
func DefaultReaderOptions(archivePath string) ReaderOptions {
	return ReaderOptions{LRUCapacity: DefaultLRUCapacity, ArchivePath: archivePath}
}

// IndexReader provides read-only, random-access query operations over a
// completed index directory.
type IndexReader struct {
	indexPath string
	offsets   OffsetMap
	urls      *IDTable
	files     *IDTable
	docFiles  []int32
	cache     *LRUCache
	opts      ReaderOptions
}

// OpenIndexReader loads the offset map and id tables from indexDir and
// prepares a reader over its posting file. It does not read the posting
// file itself until the first lookup.
func OpenIndexReader(indexDir string, opts ReaderOptions) (*IndexReader, error) {
	if opts.LRUCapacity == 0 {
		opts.LRUCapacity = DefaultLRUCapacity
	}

	offsets, err := LoadOffsetMap(filepath.Join(indexDir, "offsets.bin"))
	if err != nil {
		return nil, fmt.Errorf("loading offset map: %w", err)
	}
	urls, err := LoadIDTable(filepath.Join(indexDir, "urls.json"))
	if err != nil {
		return nil, fmt.Errorf("loading url table: %w", err)
	}
	files, err := LoadIDTable(filepath.Join(indexDir, "files.json"))
	if err != nil {
		return nil, fmt.Errorf("loading file table: %w", err)
	}
	docFiles, err := LoadDocFileIDs(filepath.Join(indexDir, "doc_files.json"))
	if err != nil {
		return nil, fmt.Errorf("loading doc_id to file_id table: %w", err)
	}

	return &IndexReader{
		indexPath: filepath.Join(indexDir, "posting.bin"),
		offsets:   offsets,
		urls:      urls,
		files:     files,
		docFiles:  docFiles,
		cache:     NewLRUCache(opts.LRUCapacity),
		opts:      opts,
	}, nil
}

// HasTerm reports whether term appears anywhere in the index, with no I/O.
func (r *IndexReader) HasTerm(term string) bool {
	_, ok := r.offsets[term]
	return ok
}

// PostingsForTerm returns term's full postings list. A term absent from
// the offset map returns (nil, nil): absence is not an error. A decode
// failure or stale offset is logged and degrades to an empty list rather
// than surfacing an error, per the query-side error handling policy.
func (r *IndexReader) PostingsForTerm(term string) ([]Posting, error) {
	if cached, ok := r.cache.Get(term); ok {
		return cached, nil
	}

	offset, ok := r.offsets[term]
	if !ok {
		return nil, nil
	}

	postings, err := r.decodeAt(term, offset)
	if err != nil {
		slog.Warn("term lookup degraded to empty postings", slog.String("term", term), slog.Any("error", err))
		return nil, nil
	}

	r.cache.Put(term, postings)
	return postings, nil
}

// PostingsForTerms resolves many terms in one call. Cache hits are
// returned immediately; misses are sorted by ascending file offset and
// decoded in a single sequential pass to minimize random I/O.
func (r *IndexReader) PostingsForTerms(terms []string) (map[string][]Posting, error) {
	result := make(map[string][]Posting, len(terms))

	type miss struct {
		term   string
		offset int64
	}
	var misses []miss

	for _, term := range terms {
		if cached, ok := r.cache.Get(term); ok {
			result[term] = cached
			continue
		}
		offset, ok := r.offsets[term]
		if !ok {
			result[term] = nil
			continue
		}
		misses = append(misses, miss{term: term, offset: offset})
	}

	sort.Slice(misses, func(i, j int) bool { return misses[i].offset < misses[j].offset })

	for _, m := range misses {
		postings, err := r.decodeAt(m.term, m.offset)
		if err != nil {
			slog.Warn("term lookup degraded to empty postings", slog.String("term", m.term), slog.Any("error", err))
			result[m.term] = nil
			continue
		}
		r.cache.Put(m.term, postings)
		result[m.term] = postings
	}

	return result, nil
}

// decodeAt seeks to offset in the posting file and decodes exactly one
// record, verifying it belongs to the expected term.
func (r *IndexReader) decodeAt(term string, offset int64) ([]Posting, error) {
	f, err := os.Open(r.indexPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	rec, err := readPostingRecord(f)
	if err != nil {
		return nil, err
	}
	if rec.Term != term {
		return nil, fmt.Errorf("%w: wanted %q, decoded %q", ErrStaleOffset, term, rec.Term)
	}
	return rec.Postings, nil
}

// DocumentFrequency returns the number of documents containing term.
func (r *IndexReader) DocumentFrequency(term string) (int, error) {
	postings, err := r.PostingsForTerm(term)
	if err != nil {
		return 0, err
	}
	return len(postings), nil
}

// DocumentFrequencies resolves many terms' document frequencies in one
// batched lookup.
func (r *IndexReader) DocumentFrequencies(terms []string) (map[string]int, error) {
	postings, err := r.PostingsForTerms(terms)
	if err != nil {
		return nil, err
	}
	dfs := make(map[string]int, len(terms))
	for term, list := range postings {
		dfs[term] = len(list)
	}
	return dfs, nil
}

// URLFor resolves docID to its canonical URL.
func (r *IndexReader) URLFor(docID int32) (string, error) {
	url, ok := r.urls.Lookup(docID)
	if !ok {
		return "", ErrUnknownDocID
	}
	return url, nil
}

// DocumentCount returns the total number of documents in the index (N, as
// used by the ranker's IDF formula).
func (r *IndexReader) DocumentCount() int {
	return r.urls.Len()
}

// DocumentTextFor fetches and HTML-strips the original content of docID,
// for use by an external summarizer. It resolves docID's file_id from the
// doc_id -> file_id table built at ingestion, then re-opens the archive at
// opts.ArchivePath and reads only that one member — never the whole
// corpus — matching the member's record against docID's url (a member can
// in principle hold more than one record).
func (r *IndexReader) DocumentTextFor(docID int32) (string, error) {
	if r.opts.ArchivePath == "" {
		return "", fmt.Errorf("DocumentTextFor requires ReaderOptions.ArchivePath")
	}

	url, err := r.URLFor(docID)
	if err != nil {
		return "", err
	}
	if int(docID) < 0 || int(docID) >= len(r.docFiles) {
		return "", fmt.Errorf("%w: doc_id %d has no recorded file_id", ErrUnknownFileID, docID)
	}
	member, ok := r.files.Lookup(r.docFiles[docID])
	if !ok {
		return "", fmt.Errorf("%w: file_id %d not present in the file table", ErrUnknownFileID, r.docFiles[docID])
	}

	ar, err := OpenArchive(r.opts.ArchivePath)
	if err != nil {
		return "", err
	}
	defer ar.Close()

	docs, err := ar.Documents(member)
	if err != nil {
		return "", err
	}
	for _, doc := range docs {
		if CanonicalizeURL(doc.URL) == url {
			return visibleText(doc.Content), nil
		}
	}
	return "", fmt.Errorf("%w: archive member %q no longer contains url %q", ErrUnknownFileID, member, url)
}

// visibleText strips HTML down to its visible text, falling back to the
// raw input on a parse failure.
func visibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return doc.Text()
}
