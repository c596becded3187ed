// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer loads articles from JSON or YAML files and upserts them
// by slug.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"newsbombs/internal/articles"
	"newsbombs/internal/models"
)

// Record is one article as it appears in an import file.
type Record struct {
	Title   string   `json:"title" yaml:"title"`
	Summary *string  `json:"summary" yaml:"summary"`
	Content string   `json:"content" yaml:"content"`
	Slug    string   `json:"slug" yaml:"slug"`
	Date    string   `json:"date" yaml:"date"`
	Lastmod *string  `json:"lastmod" yaml:"lastmod"`
	Tags    []string `json:"tags" yaml:"tags"`
	Images  []string `json:"images" yaml:"images"`
	Draft   bool     `json:"draft" yaml:"draft"`
	Layout  string   `json:"layout" yaml:"layout"`
}

// Articles is the subset of the article service the importer writes through.
type Articles interface {
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	Create(ctx context.Context, in articles.CreateInput, authorID uuid.UUID) (*models.Article, error)
	Update(ctx context.Context, id string, in articles.UpdateInput) (*models.Article, error)
}

// Result summarizes an import run.
type Result struct {
	Created int
	Updated int
	Skipped int
}

// Total is the number of records processed.
func (r Result) Total() int { return r.Created + r.Updated + r.Skipped }

// Importer upserts records through the article service.
type Importer struct {
	articles Articles
	authorID uuid.UUID
	now      func() time.Time
}

// New returns an Importer that attributes created articles to authorID.
func New(svc Articles, authorID uuid.UUID) *Importer {
	return &Importer{articles: svc, authorID: authorID, now: time.Now}
}

// Parse decodes records from r. name selects the format by extension:
// .yaml and .yml are YAML, everything else is JSON. The document may hold
// a list of records or a single one.
func Parse(name string, r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return parseYAML(raw)
	default:
		return parseJSON(raw)
	}
}

func parseJSON(raw []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("import file is empty")
	}
	if trimmed[0] == '[' {
		var list []Record
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return list, nil
	}
	var one Record
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return []Record{one}, nil
}

func parseYAML(raw []byte) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("import file is empty")
	}
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []Record
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return list, nil
	case yaml.MappingNode:
		var one Record
		if err := root.Decode(&one); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return []Record{one}, nil
	default:
		return nil, fmt.Errorf("parse yaml: line %d: expected a list or a mapping", root.Line)
	}
}

// Import upserts every record. A record whose slug already exists replaces
// that article; others are created. Failing records are logged and
// counted as skipped; only a cancelled context stops the run.
func (im *Importer) Import(ctx context.Context, records []Record) (Result, error) {
	var res Result
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created, err := im.upsert(ctx, rec)
		switch {
		case err != nil:
			slog.Error("import article failed", "title", rec.Title, "slug", rec.Slug, "error", err)
			res.Skipped++
		case created:
			slog.Info("article created", "slug", rec.Slug)
			res.Created++
		default:
			slog.Info("article updated", "slug", rec.Slug)
			res.Updated++
		}
	}
	return res, nil
}

func (im *Importer) upsert(ctx context.Context, rec Record) (bool, error) {
	if strings.TrimSpace(rec.Slug) == "" {
		return false, errors.New("slug is required")
	}

	existing, err := im.articles.GetBySlug(ctx, rec.Slug)
	if err != nil && !errors.Is(err, articles.ErrNotFound) {
		return false, err
	}

	layout := rec.Layout
	if layout == "" {
		layout = models.DefaultLayout
	}
	tags := nonNil(rec.Tags)
	images := nonNil(rec.Images)
	draft := rec.Draft

	if existing == nil {
		_, err := im.articles.Create(ctx, articles.CreateInput{
			Title:   rec.Title,
			Summary: rec.Summary,
			Content: rec.Content,
			Slug:    &rec.Slug,
			Date:    rec.Date,
			Lastmod: rec.Lastmod,
			Tags:    tags,
			Images:  images,
			Draft:   &draft,
			Layout:  &layout,
		}, im.authorID)
		return true, err
	}

	// Re-imports stamp lastmod with today unless the file names one.
	lastmod := rec.Lastmod
	if lastmod == nil {
		today := models.NewDate(im.now()).String()
		lastmod = &today
	}
	summary := rec.Summary
	if summary == nil {
		empty := ""
		summary = &empty
	}
	_, err = im.articles.Update(ctx, existing.ID.String(), articles.UpdateInput{
		Title:   &rec.Title,
		Summary: summary,
		Content: &rec.Content,
		Slug:    &rec.Slug,
		Date:    &rec.Date,
		Lastmod: lastmod,
		Tags:    &tags,
		Images:  &images,
		Draft:   &draft,
		Layout:  &layout,
	})
	return false, err
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
