// ═══════════════════════════════════════════════════════════════════════════════
// DUPLICATE FILTER
// ═══════════════════════════════════════════════════════════════════════════════
// Two independent suppression stages run over the archive in enumeration
// order, first one wins:
//
//  1. URL canonicalization — strip the fragment. Two records with the same
//     canonical URL: keep the first, drop the rest.
//  2. Content SimHash — a 64-bit locality-sensitive fingerprint of the raw
//     text's whitespace-split tokens. A document whose fingerprint is
//     within a Hamming-distance threshold of any previously accepted
//     document's fingerprint is a near-duplicate and is dropped.
//
// The accepted-fingerprint set lives in memory for the whole build; there
// is no eviction, since a build runs once, start to finish.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"hash/fnv"
	"math/bits"
	"net/url"
	"strings"
)

// DefaultSimHashThreshold is the maximum Hamming distance at which two
// documents are considered near-duplicates.
const DefaultSimHashThreshold = 5

// minTokensForSimHash guards against unstable fingerprints on very short
// documents: below this many whitespace tokens, a document is deduped by
// canonical URL alone and never compared by SimHash.
const minTokensForSimHash = 4

// CanonicalizeURL strips the fragment component of a URL. It is idempotent:
// CanonicalizeURL(CanonicalizeURL(u)) == CanonicalizeURL(u).
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		// Not a well-formed URL by net/url's rules — fall back to a plain
		// textual fragment strip so canonicalization never fails outright.
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// SimHash computes a 64-bit locality-sensitive fingerprint over a document's
// whitespace-split tokens: each token is hashed to 64 bits, and each bit
// position is voted up or down by every token's corresponding bit, with the
// final fingerprint's bit set wherever the vote is positive.
func SimHash(text string) uint64 {
	var weights [64]int
	h := fnv.New64a()
	for _, token := range strings.Fields(text) {
		h.Reset()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()
		for bit := 0; bit < 64; bit++ {
			if sum&(1<<uint(bit)) != 0 {
				weights[bit]++
			} else {
				weights[bit]--
			}
		}
	}

	var fingerprint uint64
	for bit := 0; bit < 64; bit++ {
		if weights[bit] > 0 {
			fingerprint |= 1 << uint(bit)
		}
	}
	return fingerprint
}

// hammingDistance returns the number of differing bits between two
// fingerprints.
func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// DuplicateFilter applies URL-canonicalization and SimHash near-duplicate
// suppression, in that order, stably over the archive's enumeration order.
type DuplicateFilter struct {
	threshold    int
	seenURLs     map[string]struct{}
	fingerprints []uint64
}

// NewDuplicateFilter constructs a filter with the given SimHash threshold.
// Use DefaultSimHashThreshold when the caller has no opinion.
func NewDuplicateFilter(threshold int) *DuplicateFilter {
	return &DuplicateFilter{
		threshold: threshold,
		seenURLs:  make(map[string]struct{}),
	}
}

// Accept reports whether a document should be indexed: its canonical URL
// must not have been seen before, and its content must not be a
// near-duplicate of any previously accepted document. Accepting a document
// records its URL for future calls, and also its fingerprint when it has at
// least minTokensForSimHash whitespace tokens.
func (f *DuplicateFilter) Accept(rawURL, rawText string) bool {
	canon := CanonicalizeURL(rawURL)
	if _, seen := f.seenURLs[canon]; seen {
		return false
	}

	tokenCount := len(strings.Fields(rawText))
	var fp uint64
	checkSimHash := tokenCount >= minTokensForSimHash
	if checkSimHash {
		fp = SimHash(rawText)
		for _, prior := range f.fingerprints {
			if hammingDistance(fp, prior) <= f.threshold {
				return false
			}
		}
	}

	f.seenURLs[canon] = struct{}{}
	if checkSimHash {
		f.fingerprints = append(f.fingerprints, fp)
	}
	return true
}
