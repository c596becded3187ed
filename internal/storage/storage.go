// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage persists uploaded files and serves them back under
// /uploads. Two backends exist: a local directory (the default) and an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/uploads"

// Store is a destination for uploaded files.
type Store interface {
	// Put stores body under key and returns its public location: either a
	// site-relative path (/uploads/key) or an absolute URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Handler serves GET requests for URLPrefix + "/" + key.
	Handler() http.Handler
	// Name identifies the backend in logs and metrics.
	Name() string
}

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// cleanKey rejects empty keys, nested paths and dot segments.
func cleanKey(key string) (string, error) {
	if key == "" || key != path.Base(key) || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

// Disk stores files in a local directory.
type Disk struct {
	root string
}

// NewDisk creates the directory if needed and returns a Disk store.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &Disk{root: root}, nil
}

// Name implements Store.
func (d *Disk) Name() string { return "disk" }

// Root returns the directory files are written to.
func (d *Disk) Root() string { return d.root }

// Put writes body to root/key. Existing files are never overwritten.
func (d *Disk) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(d.root, key)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	return URLPrefix + "/" + key, nil
}

// Delete removes root/key.
func (d *Disk) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(d.root, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Handler serves files from the root directory without directory listings.
func (d *Disk) Handler() http.Handler {
	files := http.StripPrefix(URLPrefix, http.FileServer(http.Dir(d.root)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
