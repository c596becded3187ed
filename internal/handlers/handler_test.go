// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure: in-memory
// repositories, a user directory and a router wired like the server's.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsbombs/internal/articles"
	"newsbombs/internal/auth"
	"newsbombs/internal/engine"
	"newsbombs/internal/middleware"
	"newsbombs/internal/models"
	"newsbombs/internal/render"
	"newsbombs/internal/storage"
	"newsbombs/internal/store"
	"newsbombs/internal/upload"
)

// memRepo is an in-memory articles.Repository ordered like the store.
type memRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]models.Article
	clock time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:  make(map[uuid.UUID]models.Article),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) Save(_ context.Context, a *models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)

	cp := *a
	if cp.Tags == nil {
		cp.Tags = []string{}
	}
	if cp.Images == nil {
		cp.Images = []string{}
	}
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
		cp.CreatedAt = r.clock
	} else if _, ok := r.rows[cp.ID]; !ok {
		return nil, nil
	}
	cp.UpdatedAt = r.clock
	r.rows[cp.ID] = cp
	return &cp, nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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
		if a.Slug == slug && (best == nil || a.CreatedAt.After(best.CreatedAt)) {
			cp := a
			best = &cp
		}
	}
	return best, nil
}

func (r *memRepo) Query(_ context.Context, f store.ArticleFilter) ([]models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Article{}
	for _, a := range r.rows {
		if (a.Draft && !f.IncludeDrafts) || (f.Tag != "" && !a.HasTag(f.Tag)) {
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
	if f.Offset >= len(out) {
		return []models.Article{}, nil
	}
	out = out[f.Offset:]
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

// memUsers is an auth.Users whose password "hash" is the plaintext.
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) CheckPassword(u *models.User, password string) bool {
	return u.PasswordHash == password
}

func (m *memUsers) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].TOTPSecret = &secret
	return nil
}

func (m *memUsers) EnableTOTP(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].TOTPEnabled = true
	return nil
}

// memRevoker is an in-memory auth.Revoker.
type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memRevoker) Revoke(_ context.Context, id string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[id] = true
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[id], nil
}

const (
	testEmail    = "admin@newsbombs.local"
	testPassword = "correct horse"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Repo     *memRepo
	Service  *articles.Service
	Users    *memUsers
	Authn    *auth.Authenticator
	Admin    *models.User
	Uploads  *storage.Disk
	Articles *Articles
	Auth     *Auth
	AdminUI  *Admin
	Engine   *engine.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newMemRepo()
	admin := &models.User{
		ID:           uuid.New(),
		Email:        testEmail,
		PasswordHash: testPassword,
		DisplayName:  "Admin",
		IsAdmin:      true,
	}
	users := &memUsers{users: map[uuid.UUID]*models.User{admin.ID: admin}}
	authn := auth.NewAuthenticator(users, "test-secret", time.Hour, &memRevoker{revoked: map[string]bool{}})

	disk, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	svc := articles.NewService(repo, nil)

	eng, err := engine.New("NewsBombs", "Tin tức")
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	rn, err := render.New("NewsBombs")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	return &testEnv{
		Repo:     repo,
		Service:  svc,
		Users:    users,
		Authn:    authn,
		Admin:    admin,
		Uploads:  disk,
		Articles: NewArticles(svc, upload.New(disk, "")),
		Auth:     NewAuth(authn),
		AdminUI:  NewAdmin(rn),
		Engine:   eng,
	}
}

// apiRouter mounts the API the way the server does.
func (env *testEnv) apiRouter() http.Handler {
	r := chi.NewRouter()
	requireAuth := middleware.RequireBearer(env.Authn)

	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", env.Articles.List)
		r.Get("/slug/{slug}", env.Articles.GetBySlug)
		r.Get("/{id}", env.Articles.Get)
		r.With(middleware.LoadPrincipal(env.Authn)).Post("/ckeditor-upload", env.Articles.EditorUpload)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireAdmin)
			r.Get("/admin/all", env.Articles.ListAll)
			r.Post("/", env.Articles.Create)
			r.Patch("/{id}", env.Articles.Update)
			r.Delete("/{id}", env.Articles.Delete)
			r.Post("/upload", env.Articles.Upload)
			r.Post("/upload-multiple", env.Articles.UploadMultiple)
		})
	})
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", env.Auth.Login)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", env.Auth.Profile)
			r.Post("/logout", env.Auth.Logout)
			r.Post("/2fa/setup", env.Auth.TOTPSetup)
			r.Post("/2fa/enable", env.Auth.TOTPEnable)
		})
	})
	return r
}

// token issues a bearer token for the test admin.
func (env *testEnv) token(t *testing.T) string {
	t.Helper()
	tok, _, err := env.Authn.Issue(env.Admin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

// seed stores an article directly through the service.
func (env *testEnv) seed(t *testing.T, in articles.CreateInput) *models.Article {
	t.Helper()
	a, err := env.Service.Create(context.Background(), in, uuid.Nil)
	if err != nil {
		t.Fatalf("seed %q: %v", in.Title, err)
	}
	return a
}

// do sends a request through h and returns the recorder.
func do(h http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// errorBody mirrors the JSON error envelope.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type filePart struct {
	field, filename, contentType string
	data                         []byte
}

// multipartRequest builds an upload request carrying parts.
func multipartRequest(t *testing.T, target, token string, parts ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		w.Write(p.data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
