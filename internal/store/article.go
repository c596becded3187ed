// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"newsbombs/internal/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"id", "title", "summary", "content", "COALESCE(slug, '')", "date", "lastmod",
	"tags", "images", "draft", "layout", "author_id", "created_at", "updated_at",
}

// ArticleFilter narrows an article query. The zero value selects published
// articles only, newest first, without a limit.
type ArticleFilter struct {
	Tag           string
	IncludeDrafts bool
	Limit         int
	Offset        int
}

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	a := &models.Article{}
	var lastmod models.Date
	var tags, images []byte
	if err := row.Scan(
		&a.ID, &a.Title, &a.Summary, &a.Content, &a.Slug, &a.Date, &lastmod,
		&tags, &images, &a.Draft, &a.Layout, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if !lastmod.IsZero() {
		a.Lastmod = &lastmod
	}
	if err := decodeList(tags, &a.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := decodeList(images, &a.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return a, nil
}

func decodeList(raw []byte, dst *[]string) error {
	*dst = []string{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

// Save inserts the article when its ID is nil and updates it otherwise,
// returning the stored row. Updating a missing row returns nil.
func (s *ArticleStore) Save(ctx context.Context, a *models.Article) (*models.Article, error) {
	tags, err := encodeList(a.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	images, err := encodeList(a.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	var lastmod any
	if a.Lastmod != nil {
		lastmod = *a.Lastmod
	}

	var b sq.Sqlizer
	if a.ID == uuid.Nil {
		b = psql.Insert("articles").
			Columns("title", "summary", "content", "slug", "date", "lastmod",
				"tags", "images", "draft", "layout", "author_id").
			Values(a.Title, a.Summary, a.Content, a.Slug, a.Date, lastmod,
				sq.Expr("?::jsonb", tags), sq.Expr("?::jsonb", images), a.Draft, a.Layout, a.AuthorID).
			Suffix("RETURNING " + joinColumns())
	} else {
		b = psql.Update("articles").SetMap(map[string]any{
			"title":      a.Title,
			"summary":    a.Summary,
			"content":    a.Content,
			"slug":       a.Slug,
			"date":       a.Date,
			"lastmod":    lastmod,
			"tags":       sq.Expr("?::jsonb", tags),
			"images":     sq.Expr("?::jsonb", images),
			"draft":      a.Draft,
			"layout":     a.Layout,
			"updated_at": sq.Expr("NOW()"),
		}).
			Where(sq.Eq{"id": a.ID}).
			Suffix("RETURNING " + joinColumns())
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build save article: %w", err)
	}

	saved, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}
	return saved, nil
}

// FindByID retrieves an article by its UUID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	return s.findOne(ctx, "find article by id", sq.Eq{"id": id})
}

// FindBySlug retrieves an article by slug regardless of draft state.
// Slugs are not unique, so the most recently created match wins.
// Returns nil if not found.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.findOne(ctx, "find article by slug", sq.Eq{"slug": slug})
}

func (s *ArticleStore) findOne(ctx context.Context, op string, where sq.Sqlizer) (*models.Article, error) {
	query, args, err := psql.Select(articleColumns...).
		From("articles").
		Where(where).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// Query lists articles matching f, ordered by date descending with the
// creation time as tie-breaker.
func (s *ArticleStore) Query(ctx context.Context, f ArticleFilter) ([]models.Article, error) {
	b := psql.Select(articleColumns...).
		From("articles").
		OrderBy("date DESC", "created_at DESC")

	if !f.IncludeDrafts {
		b = b.Where(sq.Eq{"draft": false})
	}
	if f.Tag != "" {
		b = b.Where(sq.Expr("tags @> jsonb_build_array(?::text)", f.Tag))
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	items := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Delete removes an article by ID and reports whether a row was removed.
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := psql.Delete("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete article: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete article rows: %w", err)
	}
	return n > 0, nil
}

func joinColumns() string {
	return strings.Join(articleColumns, ", ")
}
