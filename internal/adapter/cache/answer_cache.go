// Package cache holds a small LRU cache for answered dashboard queries.
// Landing views re-run the same default query on every visit; caching the
// answer avoids re-embedding the corpus and re-calling the chat model.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// AnswerCache caches answers keyed by question and visibility scope. Entries
// expire by TTL and are dropped wholesale when the store generation changes,
// so an ingest or cleanup never serves a stale answer.
type AnswerCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	storeGen uint64
}

type cacheEntry struct {
	answer    string
	timestamp time.Time
	storeGen  uint64
}

// NewAnswerCache creates a cache with the given capacity and TTL.
func NewAnswerCache(maxSize int, ttl time.Duration) *AnswerCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question, role, company string) string {
	hash := sha256.Sum256([]byte(question + "\x00" + role + "\x00" + company))
	return hex.EncodeToString(hash[:16])
}

// Get returns a cached answer for the scoped question, if still valid.
func (c *AnswerCache) Get(question, role, company string) (string, bool) {
	c.mu.RLock()
	key := cacheKey(question, role, company)
	entry, exists := c.entries[key]
	currentGen := c.storeGen
	c.mu.RUnlock()

	if !exists {
		return "", false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.storeGen != currentGen {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return "", false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.answer, true
}

// Put stores an answer for the scoped question.
func (c *AnswerCache) Put(question, role, company, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question, role, company)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{
			answer:    answer,
			timestamp: time.Now(),
			storeGen:  c.storeGen,
		}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		answer:    answer,
		timestamp: time.Now(),
		storeGen:  c.storeGen,
	}
	c.order = append(c.order, key)
}

// Invalidate drops all entries. Called after any store mutation.
func (c *AnswerCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.storeGen++
}

// Size returns the number of live entries.
func (c *AnswerCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *AnswerCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *AnswerCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *AnswerCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
