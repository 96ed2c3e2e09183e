// Package cache provides an in-memory, TTL-bounded cache for grammar
// correction results, keyed on the (text, language, mode) tuple that
// determines a [grammar.CheckResponse]. It exists to avoid redundant rule
// backend and model backend calls for text the service has already
// corrected recently.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/1ordo/illiterate-go/internal/grammar"
)

// entry is a cached response plus the bookkeeping needed for TTL
// expiration and oldest-first eviction.
type entry struct {
	value     grammar.CheckResponse
	timestamp time.Time
	hits      int
}

// Stats is a snapshot of cache usage counters.
type Stats struct {
	Entries    int
	MaxEntries int
	Hits       int64
	Misses     int64
	Evictions  int64
	HitRate    float64
}

// Cache is a thread-safe, memory-bounded cache of grammar correction
// results. The zero value is not ready to use; construct with [New].
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	ttl        time.Duration
	maxEntries int

	hits, misses, evictions int64
}

// New returns a [Cache] that evicts entries older than ttl and caps itself
// at maxEntries, evicting the oldest 10% once full.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Key derives the cache key for a (text, language, mode) tuple. Mode may
// be empty.
func Key(text, language string, mode grammar.Mode) string {
	sum := md5.Sum([]byte(text + "|" + language + "|" + string(mode)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for key if present and not expired.
// Expired entries are removed on access.
func (c *Cache) Get(key string) (grammar.CheckResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return grammar.CheckResponse{}, false
	}

	if time.Since(e.timestamp) > c.ttl {
		delete(c.entries, key)
		c.misses++
		return grammar.CheckResponse{}, false
	}

	e.hits++
	c.hits++
	return e.value, true
}

// Set stores value under key, evicting the oldest entries first if the
// cache is already at capacity.
func (c *Cache) Set(key string, value grammar.CheckResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.entries[key] = &entry{value: value, timestamp: time.Now()}
}

// evictOldestLocked removes the oldest 10% of entries (at least one).
// Callers must hold c.mu.
func (c *Cache) evictOldestLocked() {
	if len(c.entries) == 0 {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].timestamp.Before(c.entries[keys[j]].timestamp)
	})

	evictCount := len(keys) / 10
	if evictCount < 1 {
		evictCount = 1
	}
	for _, k := range keys[:evictCount] {
		delete(c.entries, k)
		c.evictions++
	}
}

// Invalidate removes key if present, reporting whether it was found.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear removes every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// CleanupExpired removes every entry whose TTL has elapsed and returns the
// number removed.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the cache's usage counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		HitRate:    hitRate,
	}
}
