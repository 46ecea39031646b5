// ═══════════════════════════════════════════════════════════════════════════════
// QUERY PROCESSOR: conjunctive AND retrieval
// ═══════════════════════════════════════════════════════════════════════════════
// QueryProcessor tokenizes a query the same way ingestion tokenizes the
// non-weighted portion of a document, then intersects the postings of
// every unique query term, smallest document frequency first, so the
// intersection shrinks (or empties out) as early as possible.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// QueryProcessor executes conjunctive AND queries against an IndexReader.
type QueryProcessor struct {
	reader *IndexReader
}

// NewQueryProcessor wraps reader for query execution.
func NewQueryProcessor(reader *IndexReader) *QueryProcessor {
	return &QueryProcessor{reader: reader}
}

// QueryResult holds everything the ranker needs: the surviving candidate
// doc_ids, the unique query terms, and each term's already-fetched
// postings (so the ranker never has to look them up again).
type QueryResult struct {
	Candidates []int32
	Terms      []string
	Postings   map[string][]Posting
}

// Execute tokenizes query, and — unless it tokenizes to zero terms —
// checks every unique term against the offset map, short-circuiting to an
// empty result before any postings are decoded if any term is entirely
// absent. Otherwise it fetches the terms' postings in one batch call and
// intersects them in ascending document-frequency order.
func (qp *QueryProcessor) Execute(query string) (QueryResult, error) {
	tokens := TokenizeQuery(query)
	if len(tokens) == 0 {
		return QueryResult{}, nil
	}

	seen := make(map[string]struct{}, len(tokens))
	var terms []string
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	// Check presence with HasTerm (no I/O) before decoding anything. A
	// term absent from the offset map means an empty conjunctive result
	// no matter what the other terms' postings look like, so none of
	// them are worth seeking and decoding from disk.
	for _, t := range terms {
		if !qp.reader.HasTerm(t) {
			return QueryResult{Terms: terms}, nil
		}
	}

	postings, err := qp.reader.PostingsForTerms(terms)
	if err != nil {
		return QueryResult{}, err
	}

	sort.Slice(terms, func(i, j int) bool { return len(postings[terms[i]]) < len(postings[terms[j]]) })

	acc := roaring.New()
	for _, p := range postings[terms[0]] {
		acc.Add(uint32(p.DocID))
	}

	for _, t := range terms[1:] {
		if acc.IsEmpty() {
			break
		}
		next := roaring.New()
		for _, p := range postings[t] {
			next.Add(uint32(p.DocID))
		}
		acc.And(next)
	}

	candidates := make([]int32, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		candidates = append(candidates, int32(it.Next()))
	}

	return QueryResult{Candidates: candidates, Terms: terms, Postings: postings}, nil
}
