// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// Text analysis turns raw HTML into the stemmed token multiset that both
// ingestion and queries use to build TF-IDF vectors.
//
// INGESTION PIPELINE:
// --------------------
//  1. Parse HTML leniently (malformed markup is never fatal).
//  2. Pull the weighted-tag content (h1/h2/h3/b/strong) out of the tree
//     first, at floor(weight) repetitions each, so it never also counts
//     toward the base pass.
//  3. Tokenize whatever visible text remains: lowercase runs of
//     [A-Za-z0-9]+, Porter-stemmed.
//
// QUERY PIPELINE:
// ----------------
// Only step 3 above — queries are never HTML, and never weighted.
//
// No stopword or minimum-length filtering is applied at either stage: a
// one-letter word like "a" is as much a term as any other, because the
// normalized term frequency the ranker consumes depends on the *exact*
// token count (see ranker.go and index.go's Posting.TF doc comment).
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	porterstemmer "github.com/reiver/go-porterstemmer"
)

// alnumPattern matches maximal runs of letters and digits — the same
// tokenization boundary used at both ingestion and query time.
var alnumPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// weightedTag associates an HTML tag with the integer repetition count its
// text contributes to the token multiset. Order matters: tags are scanned
// and removed from the tree in this order, so a tag nested inside an
// earlier one in this list is never double-counted.
type weightedTag struct {
	Name   string
	Weight float64
}

var weightedTags = []weightedTag{
	{"h1", 4},
	{"h2", 3},
	{"h3", 2},
	{"b", 1.5},
	{"strong", 1.5},
}

// stem lowercases and Porter-stems a single raw token.
func stem(token string) string {
	return porterstemmer.StemString(strings.ToLower(token))
}

// baseTokens extracts, lowercases, and stems every alphanumeric run in text,
// in the order it occurs. This is the whole of query tokenization, and one
// half of document tokenization.
func baseTokens(text string) []string {
	matches := alnumPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]string, len(matches))
	for i, m := range matches {
		tokens[i] = stem(m)
	}
	return tokens
}

// TokenizeQuery tokenizes a user search string exactly the way ingestion
// tokenizes the non-weighted portion of a document: lowercase, alphanumeric
// runs, Porter-stemmed. Queries never see HTML and never contribute
// weighted-tag repetitions.
func TokenizeQuery(query string) []string {
	return baseTokens(query)
}

// TokenizeDocument returns the full token multiset for one ingested
// document: floor(weight) repetitions of each weighted tag's own text,
// plus the base tokens of whatever visible text is left once those tags'
// subtrees are removed. The normalized term frequency for any term t is
// count(t) / len(result).
//
// Malformed HTML is never fatal: a parse failure (only possible on a
// reader error, since the underlying parser is designed to recover from
// bad markup) falls back to tokenizing the raw input as plain text.
func TokenizeDocument(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return baseTokens(html)
	}

	var weighted []string
	for _, wt := range weightedTags {
		sel := doc.Find(wt.Name)
		reps := int(wt.Weight)
		sel.Each(func(_ int, s *goquery.Selection) {
			for _, token := range baseTokens(s.Text()) {
				for i := 0; i < reps; i++ {
					weighted = append(weighted, token)
				}
			}
		})
		sel.Remove()
	}

	tokens := baseTokens(doc.Text())
	return append(tokens, weighted...)
}

// TermFrequencies converts a token multiset into normalized term
// frequencies: count(t) / len(tokens) for every distinct term. An empty
// multiset yields an empty map, never a divide-by-zero.
func TermFrequencies(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return map[string]float64{}
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	total := float64(len(tokens))
	tfs := make(map[string]float64, len(counts))
	for term, count := range counts {
		tfs[term] = float64(count) / total
	}
	return tfs
}
