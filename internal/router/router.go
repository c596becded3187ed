// Package router sets up all HTTP routes and middleware chains for
// NewsBombs. Routes are organized into the Articles API, the auth API, the
// admin UI and the public site; SITE_ROLE decides which groups a process
// mounts.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsbombs/internal/handlers"
	"newsbombs/internal/middleware"
	"newsbombs/internal/storage"
)

// Site roles.
const (
	RoleAll = "all"
	RoleAPI = "api"
	RoleWeb = "web"
)

// Config holds the routing options.
type Config struct {
	Role        string
	FrontendURL string // CORS allowed origin
	Production  bool
	Static      fs.FS        // served at /static/
	Uploads     http.Handler // served at /uploads/; nil to skip
}

// Handlers bundles the handler groups. Groups the role does not mount may
// be nil.
type Handlers struct {
	Articles *handlers.Articles
	Auth     *handlers.Auth
	Admin    *handlers.Admin
	Public   *handlers.Public
}

func (c Config) serves(role string) bool {
	return c.Role == "" || c.Role == RoleAll || c.Role == role
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg Config, h Handlers, authn middleware.Authenticator, loginLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders(cfg.Production))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static))))
	}

	if cfg.serves(RoleAPI) {
		requireAuth := middleware.RequireBearer(authn)

		r.Route("/api/articles", func(r chi.Router) {
			r.Get("/", h.Articles.List)
			r.Get("/slug/{slug}", h.Articles.GetBySlug)
			r.Get("/{id}", h.Articles.Get)

			// The editor's upload adapter may carry a token in the query
			// string; it only identifies the uploader.
			r.With(middleware.LoadPrincipal(authn)).Post("/ckeditor-upload", h.Articles.EditorUpload)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, middleware.RequireAdmin)
				r.Get("/admin/all", h.Articles.ListAll)
				r.Post("/", h.Articles.Create)
				r.Patch("/{id}", h.Articles.Update)
				r.Delete("/{id}", h.Articles.Delete)
				r.Post("/upload", h.Articles.Upload)
				r.Post("/upload-multiple", h.Articles.UploadMultiple)
			})
		})

		r.Route("/api/auth", func(r chi.Router) {
			if loginLimiter != nil {
				r.With(loginLimiter.Middleware).Post("/login", h.Auth.Login)
			} else {
				r.Post("/login", h.Auth.Login)
			}

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", h.Auth.Profile)
				r.Post("/logout", h.Auth.Logout)
				r.Post("/2fa/setup", h.Auth.TOTPSetup)
				r.Post("/2fa/enable", h.Auth.TOTPEnable)
			})
		})

		if cfg.Uploads != nil {
			r.Handle(storage.URLPrefix+"/*", cfg.Uploads)
		}

		// Admin UI shells talk to the API on the same origin.
		r.Route("/admin", func(r chi.Router) {
			r.Get("/", h.Admin.Index)
			r.Get("/login", h.Admin.LoginPage)
			r.Get("/dashboard", h.Admin.Dashboard)
			r.Get("/articles/new", h.Admin.ArticleNew)
			r.Get("/articles/{id}/edit", h.Admin.ArticleEdit)
			r.Get("/security", h.Admin.Security)
		})
	}

	if cfg.serves(RoleWeb) {
		r.Get("/", h.Public.Home)
		r.Get("/blog", h.Public.Blog)
		r.Get("/blog/page/{page}", h.Public.BlogPage)
		r.Get("/blog/*", h.Public.Post)
		r.Get("/tags", h.Public.Tags)
		r.Get("/tags/{tag}", h.Public.TagList)
		r.Get("/tags/{tag}/page/{page}", h.Public.TagListPage)
		r.Get("/api/tags", h.Public.TagCounts)
		r.NotFound(h.Public.NotFound)
	}

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
