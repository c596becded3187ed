// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"newsbombs/internal/articles"
	"newsbombs/internal/auth"
	"newsbombs/internal/cache"
	"newsbombs/internal/config"
	"newsbombs/internal/contentapi"
	"newsbombs/internal/database"
	"newsbombs/internal/engine"
	"newsbombs/internal/handlers"
	"newsbombs/internal/metrics"
	"newsbombs/internal/middleware"
	"newsbombs/internal/render"
	"newsbombs/internal/router"
	"newsbombs/internal/storage"
	"newsbombs/internal/store"
	"newsbombs/internal/upload"
	"newsbombs/web"
)

const (
	siteDescription = "Tin tức công nghệ, khởi nghiệp và đời sống số"
	shutdownTimeout = 30 * time.Second
	loginAttempts   = 10
	loginWindow     = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"role", cfg.SiteRole,
		"addr", cfg.Addr(),
	)

	// Valkey is optional: without it pages are not cached and logout
	// cannot revoke tokens early.
	var valkeyClient *redis.Client
	if cfg.ValkeyEnabled() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return fmt.Errorf("connect valkey: %w", err)
		}
		defer client.Close()
		valkeyClient = client
	} else {
		slog.Warn("valkey not configured, page cache and token revocation disabled")
	}
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	routerCfg := router.Config{
		Role:        cfg.SiteRole,
		FrontendURL: cfg.FrontendURL,
		Production:  cfg.IsProduction(),
		Static:      staticFS,
	}
	var (
		h            router.Handlers
		authn        middleware.Authenticator
		loginLimiter *middleware.RateLimiter
	)

	// The public site reads articles over HTTP, so a web-only process needs
	// no database.
	content := contentapi.New(cfg.APIURL, cfg.FetchCacheTTL, nil)

	if cfg.SiteRole != router.RoleWeb {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.IsDev() {
			if err := database.Seed(ctx, db); err != nil {
				return fmt.Errorf("seed database: %w", err)
			}
		}

		poolStats := metrics.NewPoolStatsCollector(db)
		poolStats.Start(15 * time.Second)
		defer poolStats.Stop()

		files, err := newFileStore(cfg)
		if err != nil {
			return err
		}
		routerCfg.Uploads = files.Handler()

		var revoker auth.Revoker
		if valkeyClient != nil {
			revoker = auth.NewValkeyRevoker(valkeyClient)
		}
		authenticator := auth.NewAuthenticator(store.NewUserStore(db), cfg.JWTSecret, cfg.JWTTTL, revoker)
		authn = authenticator

		loginLimiter = middleware.NewRateLimiter(loginAttempts, loginWindow)
		defer loginLimiter.Stop()

		service := articles.NewService(store.NewArticleStore(db), articles.Invalidators{pageCache, content})

		renderer, err := render.New(cfg.SiteName)
		if err != nil {
			return fmt.Errorf("admin templates: %w", err)
		}

		h.Articles = handlers.NewArticles(service, upload.New(files, cfg.BackendURL))
		h.Auth = handlers.NewAuth(authenticator)
		h.Admin = handlers.NewAdmin(renderer)
	}

	if cfg.SiteRole != router.RoleAPI {
		eng, err := engine.New(cfg.SiteName, siteDescription)
		if err != nil {
			return fmt.Errorf("site templates: %w", err)
		}
		h.Public = handlers.NewPublic(eng, content, pageCache, cfg.PostsPerPage)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(routerCfg, h, authn, loginLimiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newFileStore picks the upload backend named by STORAGE_DRIVER.
func newFileStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == "s3" {
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, nil
	}

	disk, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("disk storage: %w", err)
	}
	slog.Info("disk storage ready", "dir", disk.Root())
	return disk, nil
}
