package blaze

import "testing"

func TestCanonicalizeURLStripsFragment(t *testing.T) {
	got := CanonicalizeURL("https://x/a#top")
	want := "https://x/a"
	if got != want {
		t.Fatalf("CanonicalizeURL() = %q, want %q", got, want)
	}
}

func TestCanonicalizeURLIdempotent(t *testing.T) {
	urls := []string{
		"https://example.com/a#frag",
		"https://example.com/a",
		"not a valid url#frag",
	}
	for _, u := range urls {
		once := CanonicalizeURL(u)
		twice := CanonicalizeURL(once)
		if once != twice {
			t.Errorf("CanonicalizeURL not idempotent for %q: once=%q twice=%q", u, once, twice)
		}
	}
}

func TestDuplicateFilterFragmentDedup(t *testing.T) {
	f := NewDuplicateFilter(DefaultSimHashThreshold)
	content := "<p>This is a test document with enough words to be stable.</p>"

	if !f.Accept("https://x/a", content) {
		t.Fatal("first record should be accepted")
	}
	if f.Accept("https://x/a#top", content) {
		t.Fatal("second record with same canonical URL should be rejected")
	}
}

func TestDuplicateFilterSimHashDedup(t *testing.T) {
	f := NewDuplicateFilter(DefaultSimHashThreshold)

	a := "This is a test document with several distinct words in it."
	b := "This   is  a test   document with   several distinct words in it."

	if !f.Accept("https://x/a", a) {
		t.Fatal("first record should be accepted")
	}
	if f.Accept("https://x/b", b) {
		t.Fatal("whitespace-only variant should be rejected as a near-duplicate")
	}
}

func TestDuplicateFilterShortDocumentsSkipSimHash(t *testing.T) {
	f := NewDuplicateFilter(DefaultSimHashThreshold)

	if !f.Accept("https://x/a", "hi") {
		t.Fatal("first short record should be accepted")
	}
	if !f.Accept("https://x/b", "hi") {
		t.Fatal("second short record with a distinct URL should still be accepted; SimHash is skipped below minTokensForSimHash")
	}
}

func TestSimHashIdenticalTextsMatch(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog repeatedly today"
	if SimHash(text) != SimHash(text) {
		t.Fatal("SimHash must be deterministic")
	}
}

func TestHammingDistanceZeroForEqualFingerprints(t *testing.T) {
	var fp uint64 = 0xABCDEF
	if hammingDistance(fp, fp) != 0 {
		t.Fatal("hammingDistance of a fingerprint with itself must be 0")
	}
}
