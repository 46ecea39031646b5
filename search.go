// ═══════════════════════════════════════════════════════════════════════════════
// SEARCHER: query-time façade
// ═══════════════════════════════════════════════════════════════════════════════
// Searcher wires the index reader, query processor, and ranker together
// behind the one call a CLI or HTTP wrapper actually needs: tokenize,
// retrieve, rank, paginate.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

// SummarizerFunc is the shape an external LLM-based summarizer must
// implement to consume IndexReader.DocumentTextFor output. The core never
// calls one itself; this alias only documents the expected signature for
// a caller wiring one in.
type SummarizerFunc func(text string) (string, error)

// Searcher answers ranked queries against a completed index.
type Searcher struct {
	reader *IndexReader
	qp     *QueryProcessor
}

// OpenSearcher opens the index at indexDir for querying.
func OpenSearcher(indexDir string, opts ReaderOptions) (*Searcher, error) {
	reader, err := OpenIndexReader(indexDir, opts)
	if err != nil {
		return nil, err
	}
	return &Searcher{reader: reader, qp: NewQueryProcessor(reader)}, nil
}

// Reader exposes the underlying IndexReader, e.g. for DocumentTextFor
// calls from a summarizer collaborator.
func (s *Searcher) Reader() *IndexReader {
	return s.reader
}

// Search tokenizes query, executes conjunctive AND retrieval, ranks the
// survivors, and returns the page [offset, offset+limit). limit <= 0 means
// no limit.
func (s *Searcher) Search(query string, offset, limit int) ([]RankedResult, error) {
	qr, err := s.qp.Execute(query)
	if err != nil {
		return nil, err
	}
	if len(qr.Candidates) == 0 {
		return nil, nil
	}

	ranker := NewRanker(s.reader.DocumentCount())
	results, err := ranker.Rank(qr, TokenizeQuery(query), s.reader.URLFor)
	if err != nil {
		return nil, err
	}

	return Paginate(results, offset, limit), nil
}
