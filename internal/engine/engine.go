// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders the public site from embedded html/templates:
// home, blog listings, article detail pages in three layouts, tag pages
// and the not-found page. Pages are returned as bytes so callers can
// store them in the page cache.
package engine

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsbombs/internal/listing"
	"newsbombs/internal/markdown"
	"newsbombs/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// excerptLength is the rune limit for generated list excerpts.
const excerptLength = 200

// Site is the data shared by every page through the base layout.
type Site struct {
	Name        string
	Description string
	Year        int
	Trending    []listing.TagCount
}

// HomeData is the data for the home page.
type HomeData struct {
	Site Site
	View listing.HomeView
}

// ListData is the data for blog and tag listings.
type ListData struct {
	Site     Site
	Title    string
	Tag      string // set on tag listings
	BasePath string // first page URL; page N lives at BasePath/page/N
	Page     listing.Page
}

// PostData is the data for an article detail page.
type PostData struct {
	Site    Site
	Article *models.Article
	Body    template.HTML
	Summary string
	Image   string
	Prev    *models.Article
	Next    *models.Article
}

// TagsData is the data for the tags index.
type TagsData struct {
	Site Site
	Tags []listing.TagCount
}

// NotFoundData is the data for the not-found page.
type NotFoundData struct {
	Site Site
	Path string
}

// layoutTemplates maps article layouts to page templates.
var layoutTemplates = map[string]string{
	models.LayoutPost:   "post_layout",
	models.LayoutSimple: "post_simple",
	models.LayoutBanner: "post_banner",
}

// Engine holds the parsed page templates.
type Engine struct {
	templates   map[string]*template.Template
	name        string
	description string
	now         func() time.Time
}

// New parses every page template paired with the base layout.
func New(siteName, description string) (*Engine, error) {
	e := &Engine{
		templates:   make(map[string]*template.Template),
		name:        siteName,
		description: description,
		now:         time.Now,
	}

	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimSuffix(strings.TrimPrefix(page, "templates/"), ".html")
		if name == "base" {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		e.templates[name] = tmpl
	}

	return e, nil
}

// site builds the shared layout data.
func (e *Engine) site(trending []listing.TagCount) Site {
	return Site{
		Name:        e.name,
		Description: e.description,
		Year:        e.now().Year(),
		Trending:    trending,
	}
}

// RenderHome renders the home page.
func (e *Engine) RenderHome(v listing.HomeView, trending []listing.TagCount) ([]byte, error) {
	return e.execute("home", HomeData{Site: e.site(trending), View: v})
}

// RenderList renders one page of the blog listing.
func (e *Engine) RenderList(title string, p listing.Page, trending []listing.TagCount) ([]byte, error) {
	return e.execute("list", ListData{
		Site:     e.site(trending),
		Title:    title,
		BasePath: "/blog",
		Page:     p,
	})
}

// RenderTagList renders one page of the articles carrying tag.
func (e *Engine) RenderTagList(tag string, p listing.Page, trending []listing.TagCount) ([]byte, error) {
	return e.execute("list", ListData{
		Site:     e.site(trending),
		Title:    "#" + tag,
		Tag:      tag,
		BasePath: tagURL(tag),
		Page:     p,
	})
}

// RenderTags renders the tags index.
func (e *Engine) RenderTags(counts []listing.TagCount) ([]byte, error) {
	return e.execute("tags", TagsData{Site: e.site(nil), Tags: counts})
}

// RenderPost renders an article with the template for its layout. An
// unknown layout falls back to the default one.
func (e *Engine) RenderPost(a *models.Article, prev, next *models.Article) ([]byte, error) {
	body, err := markdown.ToHTML(a.Content)
	if err != nil {
		slog.Warn("markdown conversion failed, escaping raw content", "slug", a.Slug, "error", err)
		body = template.HTMLEscapeString(a.Content)
	}

	data := PostData{
		Site:    e.site(nil),
		Article: a,
		Body:    template.HTML(body),
		Summary: a.SummaryText(),
		Image:   a.FeaturedImage(),
		Prev:    prev,
		Next:    next,
	}
	if data.Image == "" {
		data.Image = markdown.FirstImage(body)
	}

	return e.execute(layoutTemplates[models.ResolveLayout(a.Layout)], data)
}

// RenderNotFound renders the not-found page.
func (e *Engine) RenderNotFound(path string) ([]byte, error) {
	return e.execute("not_found", NotFoundData{Site: e.site(nil), Path: path})
}

func (e *Engine) execute(name string, data any) ([]byte, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

var funcMap = template.FuncMap{
	"date":    formatDate,
	"isoDate": func(d models.Date) string { return d.String() },
	"postURL": postURL,
	"tagURL":  tagURL,
	"pageURL": pageURL,
	"excerpt": excerpt,
	"image": func(a models.Article) string {
		return a.FeaturedImage()
	},
}

// formatDate renders a models.Date or *models.Date for humans.
func formatDate(v any) string {
	var d models.Date
	switch t := v.(type) {
	case models.Date:
		d = t
	case *models.Date:
		if t == nil {
			return ""
		}
		d = *t
	}
	if d.IsZero() {
		return ""
	}
	return d.Format("January 2, 2006")
}

// postURL returns the detail URL for a slug, escaping each path segment.
func postURL(slug string) string {
	parts := strings.Split(slug, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/blog/" + strings.Join(parts, "/")
}

func tagURL(tag string) string {
	return "/tags/" + url.PathEscape(tag)
}

// pageURL returns the URL of page n of a listing rooted at base.
func pageURL(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "/page/" + strconv.Itoa(n)
}

// excerpt returns the summary, or a plain-text excerpt of the content.
func excerpt(a models.Article) string {
	if s := strings.TrimSpace(a.SummaryText()); s != "" {
		return s
	}
	body, err := markdown.ToHTML(a.Content)
	if err != nil {
		return ""
	}
	text, err := markdown.Excerpt(body, excerptLength)
	if err != nil {
		return ""
	}
	return text
}
