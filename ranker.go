// ═══════════════════════════════════════════════════════════════════════════════
// RANKER: TF-IDF cosine scoring
// ═══════════════════════════════════════════════════════════════════════════════
// Scoring is restricted to the query's own terms: building full
// document vectors over every term in the corpus would defeat the whole
// point of a disk-based index. For each query term we already have the
// exact postings fetched by the query processor, so the document vector
// is built by scanning those postings once per term.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"math"
	"sort"
)

// RankedResult is one scored, ordered hit.
type RankedResult struct {
	DocID      int32
	URL        string
	Score      float64
	TermScores map[string]float64
}

// Ranker scores a QueryResult's candidates by cosine similarity over
// TF-IDF vectors restricted to query terms, scaled by the candidate's
// cumulative query-term TF-IDF mass.
type Ranker struct {
	totalDocs int
	idfCache  map[string]float64
}

// NewRanker constructs a ranker against a corpus of totalDocs documents.
// IDF values are memoized for the lifetime of this Ranker, which callers
// should scope to a single query.
func NewRanker(totalDocs int) *Ranker {
	return &Ranker{totalDocs: totalDocs, idfCache: make(map[string]float64)}
}

// idf computes log10((N+1)/(df+1)), memoized. A term with df = 0
// contributes 0, matching the "absent term" case already short-circuited
// by the query processor but kept here as a safe default.
func (rk *Ranker) idf(term string, df int) float64 {
	if df == 0 {
		return 0
	}
	if v, ok := rk.idfCache[term]; ok {
		return v
	}
	v := math.Log10(float64(rk.totalDocs+1) / float64(df+1))
	rk.idfCache[term] = v
	return v
}

// Rank scores qr.Candidates against queryTokens (the raw, possibly
// repeated token stream the query tokenized to) and returns them sorted
// by descending score. urlFor resolves a doc_id to its canonical URL.
func (rk *Ranker) Rank(qr QueryResult, queryTokens []string, urlFor func(int32) (string, error)) ([]RankedResult, error) {
	if len(qr.Candidates) == 0 {
		return nil, nil
	}

	qtf := make(map[string]int)
	for _, tok := range queryTokens {
		qtf[tok]++
	}

	dfs := make(map[string]int, len(qr.Terms))
	for _, t := range qr.Terms {
		dfs[t] = len(qr.Postings[t])
	}

	q := make(map[string]float64, len(qtf))
	var qMagSq float64
	for term, count := range qtf {
		v := float64(count) * rk.idf(term, dfs[term])
		q[term] = v
		qMagSq += v * v
	}
	qMag := math.Sqrt(qMagSq)

	candidateSet := make(map[int32]struct{}, len(qr.Candidates))
	for _, id := range qr.Candidates {
		candidateSet[id] = struct{}{}
	}

	docVectors := make(map[int32]map[string]float64, len(qr.Candidates))
	for _, id := range qr.Candidates {
		docVectors[id] = make(map[string]float64, len(qr.Terms))
	}

	for _, term := range qr.Terms {
		termIDF := rk.idf(term, dfs[term])
		for _, p := range qr.Postings[term] {
			if _, ok := candidateSet[p.DocID]; !ok {
				continue
			}
			docVectors[p.DocID][term] = float64(p.TF) * termIDF
		}
	}

	results := make([]RankedResult, 0, len(qr.Candidates))
	for _, id := range qr.Candidates {
		d := docVectors[id]

		var dot, dMagSq, mass float64
		for term, dv := range d {
			dot += q[term] * dv
			dMagSq += dv * dv
			mass += dv
		}
		dMag := math.Sqrt(dMagSq)

		var cosine float64
		if qMag > 0 && dMag > 0 {
			cosine = dot / (qMag * dMag)
		}

		url, err := urlFor(id)
		if err != nil {
			return nil, err
		}

		results = append(results, RankedResult{
			DocID:      id,
			URL:        url,
			Score:      cosine * mass,
			TermScores: d,
		})
	}

	// Descending score, ties broken by ascending doc_id for deterministic
	// output order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results, nil
}

// Paginate slices results to [offset, offset+limit), clamping to bounds.
// limit <= 0 means "no limit".
func Paginate(results []RankedResult, offset, limit int) []RankedResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return nil
	}
	end := len(results)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return results[offset:end]
}
