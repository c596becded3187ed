// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package listing holds the pure list operations behind the public pages:
// draft filtering, ordering, pagination, tag aggregation and prev/next
// navigation. Nothing here performs I/O.
package listing

import (
	"sort"
	"strings"

	"newsbombs/internal/models"
)

// DefaultPageSize is the number of posts per blog or tag page.
const DefaultPageSize = 5

// Public returns the articles that are not drafts, preserving order.
func Public(items []models.Article) []models.Article {
	out := make([]models.Article, 0, len(items))
	for _, a := range items {
		if !a.Draft {
			out = append(out, a)
		}
	}
	return out
}

// SortByDateDesc returns a copy of items ordered newest first. Articles
// sharing a date keep their relative order.
func SortByDateDesc(items []models.Article) []models.Article {
	out := make([]models.Article, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date)
	})
	return out
}

// Page is one window of a paginated list.
type Page struct {
	Items      []models.Article
	Number     int // 1-based
	Size       int
	Total      int // number of items across all pages
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// OutOfRange reports whether the page lies past the last page. Page 1 of
// an empty list is in range.
func (p Page) OutOfRange() bool { return p.Number < 1 || (p.Number > 1 && p.Number > p.TotalPages) }

// PrevNumber is the previous page number.
func (p Page) PrevNumber() int { return p.Number - 1 }

// NextNumber is the following page number.
func (p Page) NextNumber() int { return p.Number + 1 }

// Paginate returns page k (1-based) of size P: the items in [(k-1)P, kP).
// TotalPages is ceil(N/P). Pages outside [1, TotalPages] are empty.
// A non-positive size falls back to DefaultPageSize.
func Paginate(items []models.Article, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	n := len(items)
	p := Page{
		Number:     page,
		Size:       size,
		Total:      n,
		TotalPages: (n + size - 1) / size,
		Items:      []models.Article{},
	}
	if page < 1 {
		return p
	}
	start := (page - 1) * size
	if start >= n {
		return p
	}
	end := start + size
	if end > n {
		end = n
	}
	p.Items = items[start:end]
	return p
}

// ByTag returns the articles carrying tag, preserving order. Matching is
// exact, as tags are stored.
func ByTag(items []models.Article, tag string) []models.Article {
	out := make([]models.Article, 0)
	for _, a := range items {
		if a.HasTag(tag) {
			out = append(out, a)
		}
	}
	return out
}

// TagCount is a tag and the number of articles carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts counts tag occurrences across items, sorted by count
// descending and then tag ascending. An article listing a tag twice
// counts twice.
func TagCounts(items []models.Article) []TagCount {
	counts := make(map[string]int)
	for _, a := range items {
		for _, t := range a.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// TagMap returns the counts as a tag to count map.
func TagMap(counts []TagCount) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Tag] = c.Count
	}
	return m
}

// UniqueTags returns every distinct tag in first-seen order.
func UniqueTags(items []models.Article) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range items {
		for _, t := range a.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Neighbours locates slug in sorted (newest first) and returns the older
// article as prev and the newer one as next. Either is nil at the ends of
// the list, and both are nil when slug is not in the list.
func Neighbours(sorted []models.Article, slug string) (prev, next *models.Article) {
	idx := -1
	for i := range sorted {
		if sorted[i].Slug == slug {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	if idx+1 < len(sorted) {
		prev = &sorted[idx+1]
	}
	if idx > 0 {
		next = &sorted[idx-1]
	}
	return prev, next
}

// Home layout sizes.
const (
	homeLatestEnd = 9
	homeMoreEnd   = 17
	homeTrending  = 6
)

// HomeView is the content of the home page.
type HomeView struct {
	Featured    *models.Article
	Latest      []models.Article
	More        []models.Article
	Tags        []string // every tag, first-seen order
	Trending    []string
	SelectedTag string
}

// Home builds the home page from all articles. Without a tag the newest
// public article is featured and Latest holds the next eight. With a tag
// there is no featured article and Latest starts at the first match.
// More always holds the eight after Latest.
func Home(items []models.Article, tag string) HomeView {
	sorted := SortByDateDesc(Public(items))
	tag = strings.TrimSpace(tag)

	v := HomeView{SelectedTag: tag, Tags: UniqueTags(sorted)}

	filtered := sorted
	start := 1
	if tag != "" {
		filtered = ByTag(sorted, tag)
		start = 0
	} else {
		if len(sorted) > 0 {
			v.Featured = &sorted[0]
		}
		v.Trending = firstN(v.Tags, homeTrending)
	}

	v.Latest = window(filtered, start, homeLatestEnd)
	v.More = window(filtered, homeLatestEnd, homeMoreEnd)
	return v
}

func window(items []models.Article, start, end int) []models.Article {
	if start >= len(items) {
		return nil
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
