// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads. envOrDefault treats an empty
// value the same as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_HOST", "PORT", "APP_ENV", "SITE_ROLE", "SITE_NAME",
		"DATABASE_URL", "POSTGRES_URL",
		"DB_HOST", "POSTGRES_HOST", "DB_PORT", "POSTGRES_PORT",
		"DB_USERNAME", "POSTGRES_USER", "DB_PASSWORD", "POSTGRES_PASSWORD",
		"DB_NAME", "POSTGRES_DATABASE",
		"FRONTEND_URL", "BACKEND_URL", "API_URL",
		"JWT_SECRET", "JWT_TTL",
		"STORAGE_DRIVER", "UPLOAD_DIR",
		"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PUBLIC_URL",
		"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
		"POSTS_PER_PAGE", "FETCH_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	defaults := map[string]string{
		"Host":          "0.0.0.0",
		"Port":          "3001",
		"Env":           "development",
		"SiteRole":      "all",
		"DBHost":        "localhost",
		"DBPort":        "5432",
		"DBUser":        "postgres",
		"DBName":        "newsbombs",
		"FrontendURL":   "http://localhost:3455",
		"APIURL":        "http://127.0.0.1:3001",
		"StorageDriver": "disk",
		"UploadDir":     "./uploads",
		"ValkeyHost":    "",
	}
	got := map[string]string{
		"Host":          cfg.Host,
		"Port":          cfg.Port,
		"Env":           cfg.Env,
		"SiteRole":      cfg.SiteRole,
		"DBHost":        cfg.DBHost,
		"DBPort":        cfg.DBPort,
		"DBUser":        cfg.DBUser,
		"DBName":        cfg.DBName,
		"FrontendURL":   cfg.FrontendURL,
		"APIURL":        cfg.APIURL,
		"StorageDriver": cfg.StorageDriver,
		"UploadDir":     cfg.UploadDir,
		"ValkeyHost":    cfg.ValkeyHost,
	}
	for field, want := range defaults {
		if got[field] != want {
			t.Errorf("%s = %q, want %q", field, got[field], want)
		}
	}

	if cfg.PostsPerPage != 5 {
		t.Errorf("PostsPerPage = %d, want 5", cfg.PostsPerPage)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.FetchCacheTTL != time.Minute {
		t.Errorf("FetchCacheTTL = %v, want 1m", cfg.FetchCacheTTL)
	}
	if cfg.ValkeyEnabled() {
		t.Error("ValkeyEnabled() = true without VALKEY_HOST")
	}
}

// TestLoad_EnvOverrides verifies that environment variables override defaults.
func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "4000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("SITE_ROLE", "web")
	t.Setenv("POSTS_PER_PAGE", "12")
	t.Setenv("FETCH_CACHE_TTL", "30")
	t.Setenv("API_URL", "https://api.example.com/")
	t.Setenv("VALKEY_HOST", "cache")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Port != "4000" || cfg.Env != "production" || cfg.SiteRole != "web" {
		t.Errorf("got port=%q env=%q role=%q", cfg.Port, cfg.Env, cfg.SiteRole)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Errorf("JWTTTL = %v, want 2h", cfg.JWTTTL)
	}
	if cfg.PostsPerPage != 12 {
		t.Errorf("PostsPerPage = %d, want 12", cfg.PostsPerPage)
	}
	if cfg.FetchCacheTTL != 30*time.Second {
		t.Errorf("FetchCacheTTL = %v, want 30s", cfg.FetchCacheTTL)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
	}
	if !cfg.ValkeyEnabled() {
		t.Error("ValkeyEnabled() = false with VALKEY_HOST set")
	}
}

func TestLoad_AlternateDatabaseNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_HOST", "pg")
	t.Setenv("POSTGRES_USER", "alt")
	t.Setenv("POSTGRES_DATABASE", "altdb")
	t.Setenv("DB_NAME", "primary")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DBHost != "pg" || cfg.DBUser != "alt" {
		t.Errorf("got host=%q user=%q", cfg.DBHost, cfg.DBUser)
	}
	if cfg.DBName != "primary" {
		t.Errorf("DBName = %q, want DB_NAME to win", cfg.DBName)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error in production without JWT_SECRET")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("error = %q, want it to mention JWT_SECRET", err)
	}
}

func TestLoad_DevelopmentAllowsMissingSecret(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() in development: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad role", map[string]string{"SITE_ROLE": "admin"}, "must be all, api or web"},
		{"bad driver", map[string]string{"STORAGE_DRIVER": "ftp"}, "must be disk or s3"},
		{"s3 without bucket", map[string]string{"STORAGE_DRIVER": "s3", "S3_ACCESS_KEY": "k", "S3_SECRET_KEY": "s"}, "S3Bucket"},
		{"page size", map[string]string{"POSTS_PER_PAGE": "0"}, "PostsPerPage"},
		{"page size not a number", map[string]string{"POSTS_PER_PAGE": "five"}, "not an integer"},
		{"ttl not a duration", map[string]string{"JWT_TTL": "forever"}, "not a duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

// TestDSN verifies TLS selection for discrete fields and URL sources.
func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "localhost disables tls",
			cfg:  Config{DBHost: "localhost", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "db"},
			want: "postgres://u:p@localhost:5432/db?sslmode=disable",
		},
		{
			name: "remote host requires tls",
			cfg:  Config{DBHost: "db.example.com", DBPort: "6543", DBUser: "u", DBPassword: "p", DBName: "db"},
			want: "postgres://u:p@db.example.com:6543/db?sslmode=require",
		},
		{
			name: "url gets require",
			cfg:  Config{DatabaseURL: "postgres://u:p@host/db"},
			want: "postgres://u:p@host/db?sslmode=require",
		},
		{
			name: "url keeps explicit mode",
			cfg:  Config{DatabaseURL: "postgres://u:p@host/db?sslmode=disable"},
			want: "postgres://u:p@host/db?sslmode=disable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestAddr verifies the host:port formatting.
func TestAddr(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: "3001"}
	if got := cfg.Addr(); got != "127.0.0.1:3001" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:3001")
	}
}

// TestIsDev verifies environment detection.
func TestIsDev(t *testing.T) {
	tests := []struct {
		env  string
		dev  bool
		prod bool
	}{
		{"development", true, false},
		{"production", false, true},
		{"testing", false, false},
	}
	for _, tt := range tests {
		cfg := &Config{Env: tt.env}
		if cfg.IsDev() != tt.dev || cfg.IsProduction() != tt.prod {
			t.Errorf("env %q: IsDev=%v IsProduction=%v", tt.env, cfg.IsDev(), cfg.IsProduction())
		}
	}
}

// TestEnvOrDefault verifies the helper function directly.
func TestEnvOrDefault(t *testing.T) {
	t.Setenv("NEWSBOMBS_TEST_VAR", "custom")
	if got := envOrDefault("NEWSBOMBS_TEST_VAR", "fallback"); got != "custom" {
		t.Errorf("envOrDefault with set var = %q, want %q", got, "custom")
	}
	t.Setenv("NEWSBOMBS_TEST_VAR", "")
	if got := envOrDefault("NEWSBOMBS_TEST_VAR", "fallback"); got != "fallback" {
		t.Errorf("envOrDefault with empty var = %q, want %q", got, "fallback")
	}
}
