// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache stores rendered public pages in Valkey, keyed by request path.
// A nil *PageCache is valid and caches nothing, so callers can hold one
// unconditionally when Valkey is not configured.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
// A nil client yields a nil cache.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a page key.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidatePage removes a single page from the cache.
func (pc *PageCache) InvalidatePage(ctx context.Context, key string) {
	if pc == nil {
		return
	}
	if err := pc.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		slog.Warn("page cache invalidate error", "key", key, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "key", key)
}

// InvalidateAll removes every cached page. Any article mutation can change
// the home page, listings, tag pages and neighbours, so the whole cache goes.
func (pc *PageCache) InvalidateAll(ctx context.Context) error {
	if pc == nil {
		return nil
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("page cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("page cache delete: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache cleared", "deleted", deleted)
	}
	return nil
}

// PathKey normalizes a request path into a cache key: the
// path with query and fragment dropped and trailing slashes trimmed.
func PathKey(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	return path
}
