package retrieve

import "testing"

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", []float32{1})
	c.put("b", []float32{2})

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.put("c", []float32{3})

	if _, ok := c.get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.get("a"); !ok {
		t.Error("a should survive: it was used more recently than b")
	}
	if _, ok := c.get("c"); !ok {
		t.Error("c should be cached")
	}
	if c.len() != 2 {
		t.Errorf("len = %d, want 2", c.len())
	}
}

func TestLRUCachePutRefreshesExisting(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", []float32{1})
	c.put("b", []float32{2})
	c.put("a", []float32{9})

	v, ok := c.get("a")
	if !ok || v[0] != 9 {
		t.Fatalf("get a = %v, %v; want refreshed value", v, ok)
	}
	if c.len() != 2 {
		t.Errorf("len = %d, want 2", c.len())
	}
}

func TestLRUCachePurge(t *testing.T) {
	c := newLRUCache(4)
	c.put("a", []float32{1})
	c.put("b", []float32{2})
	c.purge()

	if c.len() != 0 {
		t.Errorf("len after purge = %d", c.len())
	}
	if _, ok := c.get("a"); ok {
		t.Error("purged entry still retrievable")
	}
}
