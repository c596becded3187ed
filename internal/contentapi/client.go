// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package contentapi is the typed HTTP client the public pages use to read
// articles from the Articles API. Successful responses are cached for a
// fixed TTL. Failures never surface to callers: they are logged and turn
// into an empty list or nil.
package contentapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsbombs/internal/listing"
	"newsbombs/internal/metrics"
	"newsbombs/internal/models"
)

// DefaultTTL is how long a successful response is served from cache.
const DefaultTTL = 60 * time.Second

// maxResponseBytes bounds how much of a response body is decoded.
const maxResponseBytes = 32 << 20

// errNotFound marks a 404 from the API, which is not worth a warning.
var errNotFound = errors.New("not found")

// Client reads articles from the Articles API.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *ttlCache
}

// New creates a client for the API rooted at baseURL (scheme and host, the
// /api prefix is added per request). A nil httpClient uses a client with a
// 10 second timeout.
func New(baseURL string, ttl time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		cache:   newTTLCache(ttl),
	}
}

// Articles returns the published articles, or an empty slice on failure.
func (c *Client) Articles(ctx context.Context) []models.Article {
	const path = "/api/articles"
	if v, ok := c.cached(path); ok {
		return v.([]models.Article)
	}

	var out []models.Article
	if err := c.getJSON(ctx, path, &out); err != nil {
		slog.Warn("fetch articles failed", "error", err)
		return []models.Article{}
	}
	if out == nil {
		out = []models.Article{}
	}
	c.cache.put(path, out)
	return out
}

// ArticleBySlug returns the article with slug, or nil when it does not
// exist or cannot be fetched. Slugs may contain "/".
func (c *Client) ArticleBySlug(ctx context.Context, slug string) *models.Article {
	if slug == "" {
		return nil
	}
	return c.article(ctx, "/api/articles/slug/"+url.PathEscape(slug))
}

// TagCounts aggregates tags over the published articles.
func (c *Client) TagCounts(ctx context.Context) []listing.TagCount {
	return listing.TagCounts(listing.Public(c.Articles(ctx)))
}

// InvalidateAll implements articles.Invalidator so the local cache is
// dropped together with the page cache after a mutation.
func (c *Client) InvalidateAll(context.Context) error {
	c.cache.invalidateAll()
	return nil
}

func (c *Client) article(ctx context.Context, path string) *models.Article {
	if v, ok := c.cached(path); ok {
		a := v.(models.Article)
		return &a
	}

	var a models.Article
	if err := c.getJSON(ctx, path, &a); err != nil {
		if !errors.Is(err, errNotFound) {
			slog.Warn("fetch article failed", "path", path, "error", err)
		}
		return nil
	}
	c.cache.put(path, a)
	return &a
}

func (c *Client) cached(path string) (any, bool) {
	v, ok := c.cache.get(path)
	if ok {
		metrics.ObserveFetchCache("hit")
	} else {
		metrics.ObserveFetchCache("miss")
	}
	return v, ok
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
