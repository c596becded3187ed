// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the
// application. A .env file in the working directory is read first; real
// environment variables win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	SiteRole string // "all", "api", "web"
	SiteName string

	// PostgreSQL connection. DatabaseURL wins over the discrete fields.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Public URLs
	FrontendURL string // CORS allowed origin
	BackendURL  string // base for absolute upload URLs; request host when empty
	APIURL      string // Articles API base for the public site

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Upload storage
	StorageDriver string // "disk" or "s3"
	UploadDir     string
	S3Endpoint    string
	S3Region      string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3PublicURL   string

	// Valkey (Redis-compatible cache). Disabled when ValkeyHost is empty.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Public site
	PostsPerPage  int
	FetchCacheTTL time.Duration
}

// Load reads configuration from .env and environment variables, applying
// defaults for development where appropriate. Returns an error if values
// are malformed, or if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Host:     envOrDefault("APP_HOST", "0.0.0.0"),
		Port:     envOrDefault("PORT", "3001"),
		Env:      envOrDefault("APP_ENV", "development"),
		SiteRole: envOrDefault("SITE_ROLE", "all"),
		SiteName: envOrDefault("SITE_NAME", "NewsBombs"),

		DatabaseURL: firstEnv("DATABASE_URL", "POSTGRES_URL"),
		DBHost:      envOrDefault("DB_HOST", envOrDefault("POSTGRES_HOST", "localhost")),
		DBPort:      envOrDefault("DB_PORT", envOrDefault("POSTGRES_PORT", "5432")),
		DBUser:      envOrDefault("DB_USERNAME", envOrDefault("POSTGRES_USER", "postgres")),
		DBPassword:  envOrDefault("DB_PASSWORD", envOrDefault("POSTGRES_PASSWORD", "postgres")),
		DBName:      envOrDefault("DB_NAME", envOrDefault("POSTGRES_DATABASE", "newsbombs")),

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3455"),
		BackendURL:  strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StorageDriver: envOrDefault("STORAGE_DRIVER", "disk"),
		UploadDir:     envOrDefault("UPLOAD_DIR", "./uploads"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Region:      envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3PublicURL:   os.Getenv("S3_PUBLIC_URL"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}
	cfg.APIURL = strings.TrimRight(envOrDefault("API_URL", "http://127.0.0.1:"+cfg.Port), "/")

	var err error
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.FetchCacheTTL, err = durationEnv("FETCH_CACHE_TTL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.PostsPerPage, err = intEnv("POSTS_PER_PAGE", 5); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		slog.Warn("JWT_SECRET not set, using the built-in development secret")
	}

	return cfg, nil
}

// Validate checks option values and the combinations that must hold
// together.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SiteRole, validation.In("all", "api", "web").Error("must be all, api or web")),
		validation.Field(&c.StorageDriver, validation.In("disk", "s3").Error("must be disk or s3")),
		validation.Field(&c.S3Bucket, validation.When(c.StorageDriver == "s3", validation.Required)),
		validation.Field(&c.S3AccessKey, validation.When(c.StorageDriver == "s3", validation.Required)),
		validation.Field(&c.S3SecretKey, validation.When(c.StorageDriver == "s3", validation.Required)),
		validation.Field(&c.UploadDir, validation.When(c.StorageDriver == "disk", validation.Required)),
		validation.Field(&c.PostsPerPage, validation.Min(1)),
		validation.Field(&c.JWTTTL, validation.Min(time.Minute)),
	)
}

// DSN returns the PostgreSQL connection string. A configured URL gets
// sslmode=require unless it names a mode; discrete fields use TLS for any
// host other than localhost.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		u, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return c.DatabaseURL
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", "require")
			u.RawQuery = q.Encode()
		}
		return u.String()
	}

	sslmode := "require"
	if isLocalHost(c.DBHost) {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + sslmode,
	}
	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ValkeyEnabled reports whether a Valkey host is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

func isLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

// durationEnv accepts Go durations ("90s", "24h") or a bare number of
// seconds.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	return d, nil
}
