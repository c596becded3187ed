// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for NewsBombs. Handlers are
// grouped by concern (articles API, auth, public site, admin UI) and
// receive their dependencies through the handler struct.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsbombs/internal/articles"
	"newsbombs/internal/middleware"
	"newsbombs/internal/upload"
)

// Articles groups the JSON REST handlers under /api/articles.
type Articles struct {
	service  *articles.Service
	uploader *upload.Uploader
}

// NewArticles creates the Articles handler group.
func NewArticles(service *articles.Service, uploader *upload.Uploader) *Articles {
	return &Articles{service: service, uploader: uploader}
}

// List returns published articles, newest first. ?tag=, ?limit= and
// ?offset= narrow the result.
func (h *Articles) List(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.service.Query(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListAll returns every article including drafts.
func (h *Articles) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns one article by id.
func (h *Articles) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		articleError(w, r, err, "ID", id)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GetBySlug returns the newest article with the given slug. Slugs may
// contain an escaped "/".
func (h *Articles) GetBySlug(w http.ResponseWriter, r *http.Request) {
	s := urlParam(r, "slug")
	a, err := h.service.GetBySlug(r.Context(), s)
	if err != nil {
		articleError(w, r, err, "slug", s)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Create stores a new article authored by the caller.
func (h *Articles) Create(w http.ResponseWriter, r *http.Request) {
	var in articles.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	author := uuid.Nil
	if p := middleware.PrincipalFromCtx(r.Context()); p != nil {
		author = p.ID
	}
	a, err := h.service.Create(r.Context(), in, author)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Update applies a partial update.
func (h *Articles) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in articles.UpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		articleError(w, r, err, "ID", id)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete removes an article. The response has an empty body.
func (h *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Remove(r.Context(), id); err != nil {
		articleError(w, r, err, "ID", id)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// articleError writes a 404 naming the missing key, or defers to
// writeError.
func articleError(w http.ResponseWriter, r *http.Request, err error, key, value string) {
	if errors.Is(err, articles.ErrNotFound) {
		notFound(w, fmt.Sprintf("Article with %s %s not found", key, value))
		return
	}
	writeError(w, r, err)
}
