// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Article layouts understood by the public renderer.
const (
	LayoutPost   = "PostLayout"
	LayoutSimple = "PostSimple"
	LayoutBanner = "PostBanner"
)

// DefaultLayout is used when an article carries no layout or an unknown one.
const DefaultLayout = LayoutPost

// ResolveLayout maps a stored layout name to one the renderer knows.
func ResolveLayout(layout string) string {
	switch layout {
	case LayoutPost, LayoutSimple, LayoutBanner:
		return layout
	default:
		return DefaultLayout
	}
}

// Article is a single news item or blog post. It is plain data: all
// persistence lives in the store package.
type Article struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Summary   *string    `json:"summary"`
	Content   string     `json:"content"`
	Slug      string     `json:"slug"`
	Date      Date       `json:"date"`
	Lastmod   *Date      `json:"lastmod"`
	Tags      []string   `json:"tags"`
	Images    []string   `json:"images"`
	Draft     bool       `json:"draft"`
	Layout    string     `json:"layout"`
	AuthorID  *uuid.UUID `json:"authorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// EffectiveLastmod returns the last modification date, falling back to the
// publication date.
func (a *Article) EffectiveLastmod() Date {
	if a.Lastmod != nil && !a.Lastmod.IsZero() {
		return *a.Lastmod
	}
	return a.Date
}

// FeaturedImage returns the first image URL, or "" when there is none.
func (a *Article) FeaturedImage() string {
	if len(a.Images) == 0 {
		return ""
	}
	return a.Images[0]
}

// HasTag reports whether the article is tagged with tag (exact match).
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SummaryText returns the summary or "" when unset.
func (a *Article) SummaryText() string {
	if a.Summary == nil {
		return ""
	}
	return *a.Summary
}
