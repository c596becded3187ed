// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface.
// Admin pages are shells: the browser script in web/static/admin.js talks
// to the Articles API with the bearer token it keeps after login.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"newsbombs/internal/models"
)

//go:embed templates/admin/*.html
var adminFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title    string         // Page title for <title> tag
	Section  string         // Active navigation section (e.g., "dashboard", "articles")
	SiteName string         // Filled by the renderer
	Data     map[string]any // Page-specific data
}

// Renderer handles template parsing and execution for admin pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	siteName  string
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout.
var standaloneTemplates = map[string]bool{
	"login": true,
}

// New creates a Renderer by parsing all admin templates from the embedded
// filesystem. Each page template is paired with the base layout.
func New(siteName string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		siteName:  siteName,
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "nav-link active"
				}
				return "nav-link"
			},
			// layouts lists the article layouts for the form's <select>.
			"layouts": func() []string {
				return []string{models.LayoutPost, models.LayoutSimple, models.LayoutBanner}
			},
		},
	}

	pages, err := fs.Glob(adminFS, "templates/admin/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimPrefix(page, "templates/admin/")
		if name == "base.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		var parseErr error
		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(adminFS, page)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
				adminFS, "templates/admin/base.html", page,
			)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full admin page. Output is buffered so a template error
// never leaves a half-written response.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = &PageData{}
	}
	data.SiteName = rn.siteName

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("admin template failed", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
