package blaze

import "testing"

func TestLRUCacheGetMiss(t *testing.T) {
	c := NewLRUCache(2)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestLRUCachePutGet(t *testing.T) {
	c := NewLRUCache(2)
	postings := []Posting{{DocID: 1, TF: 0.5}}
	c.Put("term", postings)

	got, ok := c.Get("term")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if len(got) != 1 || got[0].DocID != 1 {
		t.Fatalf("Get returned %v", got)
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(2)
	c.Put("a", []Posting{{DocID: 1}})
	c.Put("b", []Posting{{DocID: 2}})
	c.Put("c", []Posting{{DocID: 3}})

	if _, ok := c.Get("a"); ok {
		t.Fatal("least-recently-used entry 'a' should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("'b' should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("'c' should still be cached")
	}
}

func TestLRUCacheGetPromotesToMostRecentlyUsed(t *testing.T) {
	c := NewLRUCache(2)
	c.Put("a", []Posting{{DocID: 1}})
	c.Put("b", []Posting{{DocID: 2}})

	c.Get("a") // promote a, making b the new LRU victim
	c.Put("c", []Posting{{DocID: 3}})

	if _, ok := c.Get("b"); ok {
		t.Fatal("'b' should have been evicted after 'a' was promoted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("'a' should still be cached after promotion")
	}
}

func TestLRUCacheLen(t *testing.T) {
	c := NewLRUCache(3)
	c.Put("a", nil)
	c.Put("b", nil)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUCacheCapacityFloor(t *testing.T) {
	c := NewLRUCache(0)
	if c.capacity != 1 {
		t.Fatalf("capacity = %d, want 1 (floored)", c.capacity)
	}
}
