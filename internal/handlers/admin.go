// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsbombs/internal/render"
)

// Admin serves the admin UI pages. The pages carry no data of their own:
// admin.js fetches and mutates articles through the authenticated API.
type Admin struct {
	renderer *render.Renderer
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer) *Admin {
	return &Admin{renderer: renderer}
}

// Index redirects /admin to the dashboard.
func (a *Admin) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// LoginPage renders the login form.
func (a *Admin) LoginPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "login", &render.PageData{Title: "Đăng nhập"})
}

// Dashboard renders the article table.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Bài viết",
		Section: "dashboard",
	})
}

// ArticleNew renders an empty article form.
func (a *Admin) ArticleNew(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "article_form", &render.PageData{
		Title:   "Viết bài mới",
		Section: "new",
		Data:    map[string]any{"ID": ""},
	})
}

// ArticleEdit renders the form for an existing article.
func (a *Admin) ArticleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	a.renderer.Page(w, r, "article_form", &render.PageData{
		Title:   "Sửa bài viết",
		Section: "dashboard",
		Data:    map[string]any{"ID": id.String()},
	})
}

// Security renders the two-factor setup page.
func (a *Admin) Security(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "security", &render.PageData{
		Title:   "Bảo mật",
		Section: "security",
	})
}
