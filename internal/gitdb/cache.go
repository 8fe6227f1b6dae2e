package gitdb

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DefaultTTL matches the freshness window the site has always used.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	content  json.RawMessage
	cachedAt time.Time
}

// Cache is a read-through cache over a Store. Entries expire after a fixed
// TTL and are removed explicitly by every successful write path.
//
// Invalidate bumps a per-key generation counter; a fetch that was already in
// flight when the invalidate happened sees a different generation at
// store-time and is discarded, so stale data cannot be resurrected past an
// invalidate.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	gens    map[string]uint64
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
		gens:    make(map[string]uint64),
	}
}

// SetClock replaces the cache's time source. Tests only.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the cached content for key when it is fresher than the TTL,
// otherwise fetches through the store and caches the result. A missing
// document yields (nil, nil) and is not cached, so the next read re-queries
// the store.
func (c *Cache) Get(ctx context.Context, store Store, key string) (json.RawMessage, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.cachedAt) < c.ttl {
		c.mu.Unlock()
		return entry.content, nil
	}
	gen := c.gens[key]
	c.mu.Unlock()

	doc, err := store.GetDocument(ctx, key)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	c.mu.Lock()
	if c.gens[key] == gen {
		c.entries[key] = cacheEntry{content: doc.Content, cachedAt: c.now()}
	}
	c.mu.Unlock()
	return doc.Content, nil
}

// Invalidate drops the cached entry for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gens[key]++
}
