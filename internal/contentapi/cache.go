// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go provides the in-memory time-based cache for API responses.
// Entries remember when they were fetched; an entry older than the TTL is
// treated as a miss and refetched by the caller.
package contentapi

import (
	"log/slog"
	"sync"
	"time"
)

// cacheEntry is a decoded response and the time it was fetched.
type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// ttlCache is a concurrency-safe map of request paths to fresh responses.
type ttlCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// newTTLCache creates an empty cache. A non-positive ttl disables caching.
func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached value for key if it is younger than the TTL.
func (c *ttlCache) get(key string) (any, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// put stores a value fetched now.
func (c *ttlCache) put(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, fetchedAt: c.now()}
	slog.Debug("content cache stored", "key", key, "size", len(c.entries))
}

// invalidateAll clears every entry.
func (c *ttlCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	slog.Debug("content cache cleared")
}
