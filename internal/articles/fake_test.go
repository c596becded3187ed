// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package articles

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsbombs/internal/models"
	"newsbombs/internal/store"
)

// memRepo is an in-memory Repository mirroring the store's ordering rules.
type memRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]models.Article
	clock time.Time
	fail  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:  make(map[uuid.UUID]models.Article),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memRepo) Save(_ context.Context, a *models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}

	cp := *a
	if cp.Tags == nil {
		cp.Tags = []string{}
	}
	if cp.Images == nil {
		cp.Images = []string{}
	}
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
		cp.CreatedAt = r.tick()
		cp.UpdatedAt = cp.CreatedAt
	} else {
		old, ok := r.rows[cp.ID]
		if !ok {
			return nil, nil
		}
		cp.CreatedAt = old.CreatedAt
		cp.UpdatedAt = r.tick()
	}
	r.rows[cp.ID] = cp
	out := cp
	return &out, nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	a, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memRepo) FindBySlug(_ context.Context, slug string) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Article
	for _, a := range r.rows {
		if a.Slug != slug {
			continue
		}
		if best == nil || a.CreatedAt.After(best.CreatedAt) {
			cp := a
			best = &cp
		}
	}
	return best, nil
}

func (r *memRepo) Query(_ context.Context, f store.ArticleFilter) ([]models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := []models.Article{}
	for _, a := range r.rows {
		if a.Draft && !f.IncludeDrafts {
			continue
		}
		if f.Tag != "" && !a.HasTag(f.Tag) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []models.Article{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

// countingInvalidator records InvalidateAll calls.
type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) InvalidateAll(context.Context) error {
	c.calls++
	return c.err
}

var errBoom = errors.New("boom")
