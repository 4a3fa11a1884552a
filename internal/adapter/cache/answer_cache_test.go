package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheScopesByRoleAndCompany(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)
	c.Put("summary", "ceo", "Acme", "acme summary")

	if got, ok := c.Get("summary", "ceo", "Acme"); !ok || got != "acme summary" {
		t.Errorf("expected hit for same scope, got %q, %v", got, ok)
	}
	if _, ok := c.Get("summary", "ceo", "Globex"); ok {
		t.Error("different company must miss")
	}
	if _, ok := c.Get("summary", "owner", "Acme"); ok {
		t.Error("different role must miss")
	}
}

func TestCacheInvalidateDropsEverything(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)
	c.Put("summary", "ceo", "Acme", "v1")
	c.Invalidate()

	if _, ok := c.Get("summary", "ceo", "Acme"); ok {
		t.Error("entry survived invalidation")
	}
	if c.Size() != 0 {
		t.Errorf("size %d after invalidation", c.Size())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewAnswerCache(10, time.Millisecond)
	c.Put("summary", "ceo", "", "v1")
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("summary", "ceo", ""); ok {
		t.Error("entry survived TTL")
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewAnswerCache(2, time.Minute)
	c.Put("q1", "ceo", "", "a1")
	c.Put("q2", "ceo", "", "a2")
	// Touch q1 so q2 becomes the eviction candidate.
	c.Get("q1", "ceo", "")
	c.Put("q3", "ceo", "", "a3")

	if _, ok := c.Get("q2", "ceo", ""); ok {
		t.Error("least recently used entry not evicted")
	}
	if _, ok := c.Get("q1", "ceo", ""); !ok {
		t.Error("recently used entry evicted")
	}
	if c.Size() != 2 {
		t.Errorf("size %d, want 2", c.Size())
	}
}

func TestCacheCapacityDefaults(t *testing.T) {
	c := NewAnswerCache(0, 0)
	for i := 0; i < 150; i++ {
		c.Put(fmt.Sprintf("q%d", i), "ceo", "", "a")
	}
	if c.Size() != 100 {
		t.Errorf("size %d, want default cap 100", c.Size())
	}
}
