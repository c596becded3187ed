// Package web provides embedded static assets for the public site and the
// admin interface, served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree: the site and admin
// stylesheets and the admin browser script.
//
//go:embed all:static
var StaticFS embed.FS
