// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"newsbombs/internal/cache"
	"newsbombs/internal/engine"
	"newsbombs/internal/listing"
	"newsbombs/internal/models"
)

// footerTags is how many tag counts the site footer lists.
const footerTags = 10

// Content is the read side of the Articles API the public site renders
// from. *contentapi.Client satisfies it.
type Content interface {
	Articles(ctx context.Context) []models.Article
	ArticleBySlug(ctx context.Context, slug string) *models.Article
	TagCounts(ctx context.Context) []listing.TagCount
}

// PageStore caches rendered pages by key. A nil *cache.PageCache is a
// valid PageStore that caches nothing.
type PageStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
}

// pageState is what a page builder produced.
type pageState int

const (
	pageMissing  pageState = iota // render the 404 page
	pageOK                        // serve and cache
	pageUncached                  // serve without caching
)

// Public groups handlers for the server-rendered site. It checks the
// Valkey page cache before rendering and stores rendered results on miss.
type Public struct {
	engine    *engine.Engine
	content   Content
	pageCache PageStore
	pageSize  int
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(eng *engine.Engine, content Content, pageCache PageStore, pageSize int) *Public {
	if pageSize <= 0 {
		pageSize = listing.DefaultPageSize
	}
	if pageCache == nil {
		pageCache = (*cache.PageCache)(nil)
	}
	return &Public{engine: eng, content: content, pageCache: pageCache, pageSize: pageSize}
}

// Home renders the home page. ?tag= switches it to that tag's articles.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	key := cache.PathKey(r.URL.Path)
	if tag != "" {
		key += "?tag=" + url.QueryEscape(tag)
	}

	p.cached(w, r, key, func(ctx context.Context) ([]byte, pageState, error) {
		items := p.content.Articles(ctx)
		html, err := p.engine.RenderHome(listing.Home(items, tag), p.trending(items))
		return html, pageOK, err
	})
}

// Blog renders the first page of the blog listing.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	p.blogPage(w, r, 1)
}

// BlogPage renders page N of the blog listing.
func (p *Public) BlogPage(w http.ResponseWriter, r *http.Request) {
	n, ok := pageNumber(r)
	if !ok {
		p.NotFound(w, r)
		return
	}
	p.blogPage(w, r, n)
}

func (p *Public) blogPage(w http.ResponseWriter, r *http.Request, n int) {
	p.cached(w, r, cache.PathKey(r.URL.Path), func(ctx context.Context) ([]byte, pageState, error) {
		items := p.content.Articles(ctx)
		sorted := listing.SortByDateDesc(listing.Public(items))
		page := listing.Paginate(sorted, n, p.pageSize)
		html, err := p.engine.RenderList("All Posts", page, p.trending(items))
		return html, pageStateOf(page), err
	})
}

// Post renders one article. The slug is everything after /blog/ and may
// contain "/". Drafts are reachable by direct link.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	slug := strings.Trim(wildcard(r), "/")
	if slug == "" {
		p.NotFound(w, r)
		return
	}

	p.cached(w, r, cache.PathKey(r.URL.Path), func(ctx context.Context) ([]byte, pageState, error) {
		a := p.content.ArticleBySlug(ctx, slug)
		if a == nil {
			return nil, pageMissing, nil
		}
		sorted := listing.SortByDateDesc(listing.Public(p.content.Articles(ctx)))
		prev, next := listing.Neighbours(sorted, a.Slug)
		html, err := p.engine.RenderPost(a, prev, next)
		return html, pageOK, err
	})
}

// Tags renders the tag index.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, cache.PathKey(r.URL.Path), func(ctx context.Context) ([]byte, pageState, error) {
		html, err := p.engine.RenderTags(p.content.TagCounts(ctx))
		return html, pageOK, err
	})
}

// TagList renders the first page of a tag's articles.
func (p *Public) TagList(w http.ResponseWriter, r *http.Request) {
	p.tagPage(w, r, 1)
}

// TagListPage renders page N of a tag's articles.
func (p *Public) TagListPage(w http.ResponseWriter, r *http.Request) {
	n, ok := pageNumber(r)
	if !ok {
		p.NotFound(w, r)
		return
	}
	p.tagPage(w, r, n)
}

func (p *Public) tagPage(w http.ResponseWriter, r *http.Request, n int) {
	tag := urlParam(r, "tag")
	p.cached(w, r, cache.PathKey(r.URL.Path), func(ctx context.Context) ([]byte, pageState, error) {
		items := p.content.Articles(ctx)
		tagged := listing.ByTag(listing.SortByDateDesc(listing.Public(items)), tag)
		page := listing.Paginate(tagged, n, p.pageSize)
		html, err := p.engine.RenderTagList(tag, page, p.trending(items))
		return html, pageStateOf(page), err
	})
}

// TagCounts answers /api/tags with a tag to count map.
func (p *Public) TagCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listing.TagMap(p.content.TagCounts(r.Context())))
}

// NotFound renders the site's 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	html, err := p.engine.RenderNotFound(r.URL.Path)
	if err != nil {
		slog.Error("render not found page failed", "error", err)
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, html)
}

// pageStateOf keeps pages past the end out of the cache.
func pageStateOf(page listing.Page) pageState {
	if page.OutOfRange() {
		return pageUncached
	}
	return pageOK
}

// cached serves key from the page cache, or runs build and stores its
// output when build reports pageOK.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, key string, build func(ctx context.Context) ([]byte, pageState, error)) {
	ctx := r.Context()
	if html, ok := p.pageCache.Get(ctx, key); ok {
		writeHTML(w, http.StatusOK, html)
		return
	}

	html, state, err := build(ctx)
	if err != nil {
		slog.Error("render page failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if state == pageMissing {
		p.NotFound(w, r)
		return
	}

	if state == pageOK {
		p.pageCache.Set(ctx, key, html)
	}
	writeHTML(w, http.StatusOK, html)
}

// trending returns the most used tags for the site footer.
func (p *Public) trending(items []models.Article) []listing.TagCount {
	counts := listing.TagCounts(listing.Public(items))
	if len(counts) > footerTags {
		counts = counts[:footerTags]
	}
	return counts
}

func writeHTML(w http.ResponseWriter, status int, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html)
}

// pageNumber parses the {page} parameter. Only positive integers are
// valid.
func pageNumber(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// urlParam returns a route parameter with percent-escapes decoded. chi
// matches on the raw path when the request carries escaped characters.
func urlParam(r *http.Request, name string) string {
	return unescapeParam(r, chi.URLParam(r, name))
}

func wildcard(r *http.Request) string {
	return unescapeParam(r, chi.URLParam(r, "*"))
}

func unescapeParam(r *http.Request, v string) string {
	if r.URL.RawPath == "" {
		return v
	}
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}
