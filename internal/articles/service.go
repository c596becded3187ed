// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package articles implements the article lifecycle: creation with slug
// derivation, published and admin listings, partial updates and deletion.
package articles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"newsbombs/internal/models"
	"newsbombs/internal/slug"
	"newsbombs/internal/store"
)

// Repository is the persistence the service needs. *store.ArticleStore
// satisfies it; lookups return (nil, nil) when nothing matches.
type Repository interface {
	Save(ctx context.Context, a *models.Article) (*models.Article, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	Query(ctx context.Context, f store.ArticleFilter) ([]models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Invalidator drops rendered pages after a mutation.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Invalidators fans an invalidation out to several caches. Every member
// is called; failures are joined.
type Invalidators []Invalidator

// InvalidateAll implements Invalidator.
func (m Invalidators) InvalidateAll(ctx context.Context) error {
	var errs []error
	for _, inv := range m {
		if inv == nil {
			continue
		}
		if err := inv.InvalidateAll(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ListOptions narrows a listing.
type ListOptions struct {
	Tag           string
	IncludeDrafts bool
	Limit         int
	Offset        int
}

// Service is the articles business logic.
type Service struct {
	repo        Repository
	invalidator Invalidator
}

// NewService creates a Service. invalidator may be nil.
func NewService(repo Repository, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// Create validates the input, derives the slug when none is given and
// stores a new article authored by authorID (uuid.Nil for none).
func (s *Service) Create(ctx context.Context, in CreateInput, authorID uuid.UUID) (*models.Article, error) {
	if err := in.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	lastmod, err := parseLastmod(in.Lastmod)
	if err != nil {
		return nil, err
	}
	a := &models.Article{
		Title:   in.Title,
		Summary: in.Summary,
		Content: in.Content,
		Date:    date,
		Tags:    in.Tags,
		Images:  in.Images,
		Layout:  models.DefaultLayout,
	}
	if v, ok := nonEmpty(in.Slug); ok {
		a.Slug = v
	} else {
		a.Slug = slug.Generate(in.Title)
	}
	a.Lastmod = lastmod
	if in.Draft != nil {
		a.Draft = *in.Draft
	}
	if v, ok := nonEmpty(in.Layout); ok {
		a.Layout = v
	}
	if authorID != uuid.Nil {
		id := authorID
		a.AuthorID = &id
	}

	saved, err := s.repo.Save(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.invalidate(ctx, "create", saved.ID)
	return saved, nil
}

// ListPublic returns non-draft articles, newest first.
func (s *Service) ListPublic(ctx context.Context) ([]models.Article, error) {
	return s.Query(ctx, ListOptions{})
}

// ListAll returns every article including drafts, newest first.
func (s *Service) ListAll(ctx context.Context) ([]models.Article, error) {
	return s.Query(ctx, ListOptions{IncludeDrafts: true})
}

// Query lists articles with optional tag filtering and paging.
func (s *Service) Query(ctx context.Context, opts ListOptions) ([]models.Article, error) {
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	items, err := s.repo.Query(ctx, store.ArticleFilter{
		Tag:           opts.Tag,
		IncludeDrafts: opts.IncludeDrafts,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return items, nil
}

// GetByID returns the article with the given id, drafts included.
// A malformed id is reported as ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Article, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	a, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// GetBySlug returns the newest article with the given slug, drafts included.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	a, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get article by slug: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// Update applies a partial update. A new non-empty title without a
// non-empty slug regenerates the slug from the title.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Article, error) {
	if err := in.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Summary != nil {
		a.Summary = in.Summary
	}
	if in.Content != nil {
		a.Content = *in.Content
	}
	if in.Slug != nil {
		a.Slug = *in.Slug
	}
	if in.Date != nil {
		if a.Date, err = parseDate("date", *in.Date); err != nil {
			return nil, err
		}
	}
	if in.Lastmod != nil {
		// A blank lastmod clears it.
		if a.Lastmod, err = parseLastmod(in.Lastmod); err != nil {
			return nil, err
		}
	}
	if in.Tags != nil {
		a.Tags = *in.Tags
	}
	if in.Images != nil {
		a.Images = *in.Images
	}
	if in.Draft != nil {
		a.Draft = *in.Draft
	}
	if in.Layout != nil {
		a.Layout = *in.Layout
	}

	title, titleSet := nonEmpty(in.Title)
	if _, slugSet := nonEmpty(in.Slug); titleSet && !slugSet {
		a.Slug = slug.Generate(title)
	}

	saved, err := s.repo.Save(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	if saved == nil {
		// Deleted concurrently between lookup and save.
		return nil, ErrNotFound
	}
	s.invalidate(ctx, "update", saved.ID)
	return saved, nil
}

// Remove hard-deletes the article with the given id.
func (s *Service) Remove(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	removed, err := s.repo.Delete(ctx, uid)
	if err != nil {
		return fmt.Errorf("remove article: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	s.invalidate(ctx, "delete", uid)
	return nil
}

// invalidate drops cached pages. Failures are logged, not returned.
func (s *Service) invalidate(ctx context.Context, op string, id uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateAll(ctx); err != nil {
		slog.Warn("page cache invalidation failed", "op", op, "article_id", id, "error", err)
	}
}
