// Package cache provides small mutex-guarded TTL caches for backend results.
// Each cache is an explicit instance owning its map; there is no package-level
// state.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	timestamp time.Time
	ttl       time.Duration
	timer     *time.Timer
}

func (e entry[V]) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.timestamp) > e.ttl
}

// Cache maps string keys to values with an optional per-entry time-to-live.
// Expired entries are evicted lazily on read and opportunistically by a
// scheduled removal. Safe for concurrent use.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]entry[V])}
}

// Set stores value under key. A ttl <= 0 means the entry never expires and is
// removed only by explicit invalidation.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.entries[key]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	e := entry[V]{value: value, timestamp: time.Now(), ttl: ttl}
	if ttl > 0 {
		e.timer = time.AfterFunc(ttl, func() { c.expire(key) })
	}
	c.entries[key] = e
}

// Get returns the live value under key, evicting it first if expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if e.expired(time.Now()) {
		c.expire(key)
		return zero, false
	}
	return e.value, true
}

// Delete removes a single entry.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// DeletePrefix removes every entry whose key starts with prefix and returns
// how many were dropped.
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.remove(key)
			n++
		}
	}
	return n
}

// Clear drops all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		c.remove(key)
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// expire removes key only if its entry is actually past its ttl, so a
// scheduled removal never drops a fresher entry stored under the same key.
func (c *Cache[V]) expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.expired(time.Now()) {
		c.remove(key)
	}
}

func (c *Cache[V]) remove(key string) {
	if e, ok := c.entries[key]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.entries, key)
	}
}
