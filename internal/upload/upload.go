// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload receives multipart image uploads, validates their type and
// size, and hands them to a storage.Store under a collision-resistant name.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"newsbombs/internal/metrics"
	"newsbombs/internal/storage"
)

var (
	// ErrUnsupportedType is returned when a file is not an accepted image.
	ErrUnsupportedType = errors.New("only image files are allowed")
	// ErrTooLarge is returned when a file or the request exceeds the limit.
	ErrTooLarge = errors.New("file too large")
	// ErrNoFile is returned when the expected form field carries no file.
	ErrNoFile = errors.New("no file uploaded")
)

const (
	// maxImagePixels caps decoded dimensions to reject decompression bombs.
	maxImagePixels = 100_000_000

	// multipartOverhead is allowed on top of the file limit for boundaries
	// and part headers.
	multipartOverhead = 1 << 20

	// memoryLimit is how much of a multipart body is buffered in memory
	// before spilling to temporary files.
	memoryLimit = 8 << 20
)

// Profile describes one upload endpoint.
type Profile struct {
	Field    string   // multipart form field
	MaxSize  int64    // per-file limit in bytes
	Types    []string // accepted MIME subtypes
	Prefix   string   // stored filename prefix; defaults to Field
	MaxFiles int      // files accepted per request
}

var (
	// AdminProfile is used by the authenticated single-file upload.
	AdminProfile = Profile{
		Field:    "file",
		MaxSize:  10 << 20,
		Types:    []string{"jpg", "jpeg", "png", "gif", "webp"},
		MaxFiles: 1,
	}

	// MultipleProfile is used by the authenticated multi-file upload.
	MultipleProfile = Profile{
		Field:    "files",
		MaxSize:  10 << 20,
		Types:    []string{"jpg", "jpeg", "png", "gif", "webp"},
		MaxFiles: 10,
	}

	// EditorProfile is used by the rich text editor's upload adapter.
	EditorProfile = Profile{
		Field:    "upload",
		MaxSize:  20 << 20,
		Types:    []string{"jpg", "jpeg", "png", "gif", "webp", "bmp"},
		Prefix:   "image",
		MaxFiles: 1,
	}
)

func (p Profile) prefix() string {
	if p.Prefix != "" {
		return p.Prefix
	}
	return p.Field
}

func (p Profile) maxFiles() int {
	if p.MaxFiles < 1 {
		return 1
	}
	return p.MaxFiles
}

// declaredPattern matches the client-declared MIME type, e.g. /(jpg|png)$.
func (p Profile) declaredPattern() *regexp.Regexp {
	return regexp.MustCompile(`/(` + strings.Join(p.Types, "|") + `)$`)
}

func (p Profile) accepts(subtype string) bool {
	for _, t := range p.Types {
		if t == subtype {
			return true
		}
	}
	return false
}

// File describes one stored upload.
type File struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
	Path         string `json:"path"`
	URL          string `json:"url"`
}

// Uploader validates and stores uploads.
type Uploader struct {
	store   storage.Store
	baseURL string
	now     func() time.Time
	suffix  func() int64
}

// New creates an Uploader. baseURL (BACKEND_URL) prefixes relative file
// locations; when empty the request's scheme and host are used.
func New(store storage.Store, baseURL string) *Uploader {
	return &Uploader{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		suffix:  func() int64 { return rand.Int64N(1_000_000_000) },
	}
}

// Receive parses the multipart request, validates every file in the
// profile's field and stores them. Nothing is stored unless all files pass.
func (u *Uploader) Receive(w http.ResponseWriter, r *http.Request, p Profile) ([]File, error) {
	limit := p.MaxSize*int64(p.maxFiles()) + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			u.observe(p, "too_large", 0)
			return nil, fmt.Errorf("%w: limit is %d MB", ErrTooLarge, p.MaxSize>>20)
		}
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			u.observe(p, "too_large", 0)
			return nil, fmt.Errorf("%w: %v", ErrTooLarge, err)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrNoFile
		}
		return nil, fmt.Errorf("%w: malformed multipart body: %v", ErrNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[p.Field]
	if len(headers) == 0 {
		return nil, ErrNoFile
	}
	if len(headers) > p.maxFiles() {
		u.observe(p, "too_many", 0)
		return nil, fmt.Errorf("%w: at most %d files", ErrTooLarge, p.maxFiles())
	}

	type accepted struct {
		header *multipart.FileHeader
		data   []byte
		mime   string
	}
	var ok []accepted
	for _, h := range headers {
		data, mime, err := u.check(h, p)
		if err != nil {
			result := "rejected"
			if errors.Is(err, ErrTooLarge) {
				result = "too_large"
			}
			u.observe(p, result, 0)
			return nil, err
		}
		ok = append(ok, accepted{header: h, data: data, mime: mime})
	}

	files := make([]File, 0, len(ok))
	for _, a := range ok {
		name := u.filename(p, a.header.Filename, a.mime)
		loc, err := u.store.Put(r.Context(), name, a.mime, bytes.NewReader(a.data), int64(len(a.data)))
		if err != nil {
			u.observe(p, "error", 0)
			u.discard(files)
			return nil, fmt.Errorf("store upload %s: %w", name, err)
		}
		u.observe(p, "ok", int64(len(a.data)))

		f := File{
			Filename:     name,
			OriginalName: a.header.Filename,
			MimeType:     a.header.Header.Get("Content-Type"),
			Size:         int64(len(a.data)),
			Path:         storage.URLPrefix + "/" + name,
			URL:          u.absoluteURL(r, loc),
		}
		files = append(files, f)
		slog.Info("file uploaded", "field", p.Field, "filename", name, "size", f.Size, "backend", u.store.Name())
	}
	return files, nil
}

// discard removes files stored earlier in a request that failed part way.
// It runs without the request context so a cancelled request still cleans up.
func (u *Uploader) discard(files []File) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, f := range files {
		if err := u.store.Delete(ctx, f.Filename); err != nil {
			slog.Error("discard upload", "filename", f.Filename, "backend", u.store.Name(), "error", err)
		}
	}
}

// check enforces size and type rules and returns the file contents with
// the sniffed MIME type.
func (u *Uploader) check(h *multipart.FileHeader, p Profile) ([]byte, string, error) {
	if h.Size > p.MaxSize {
		return nil, "", fmt.Errorf("%w: limit is %d MB", ErrTooLarge, p.MaxSize>>20)
	}

	declared := strings.ToLower(strings.TrimSpace(h.Header.Get("Content-Type")))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if !p.declaredPattern().MatchString(declared) {
		return nil, "", fmt.Errorf("%w: declared type %q", ErrUnsupportedType, declared)
	}

	f, err := h.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, p.MaxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > p.MaxSize {
		return nil, "", fmt.Errorf("%w: limit is %d MB", ErrTooLarge, p.MaxSize>>20)
	}

	sniffed := http.DetectContentType(data)
	subtype, isImage := strings.CutPrefix(sniffed, "image/")
	if !isImage || !p.accepts(subtype) {
		return nil, "", fmt.Errorf("%w: content is %s", ErrUnsupportedType, sniffed)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxImagePixels)
	}

	return data, sniffed, nil
}

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

// filename builds <prefix>-<unixMillis>-<random><ext>.
func (u *Uploader) filename(p Profile, original, mime string) string {
	ext := filepath.Ext(original)
	if !safeExt.MatchString(ext) {
		ext = extensionFromType(mime)
	}
	return fmt.Sprintf("%s-%d-%d%s", p.prefix(), u.now().UnixMilli(), u.suffix(), ext)
}

// absoluteURL turns a site-relative location into an absolute URL.
func (u *Uploader) absoluteURL(r *http.Request, loc string) string {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return loc
	}
	if u.baseURL != "" {
		return u.baseURL + loc
	}
	return requestOrigin(r) + loc
}

// requestOrigin returns scheme://host of the incoming request, honouring
// X-Forwarded-Proto set by a reverse proxy.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

func (u *Uploader) observe(p Profile, result string, size int64) {
	metrics.ObserveUpload(p.Field, u.store.Name(), result, size)
}

// extensionFromType returns a file extension for accepted image types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ""
	}
}
