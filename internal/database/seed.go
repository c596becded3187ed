package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Default administrator created by Seed and by the article importer.
const (
	DefaultAdminEmail    = "admin@newsbombs.com"
	DefaultAdminPassword = "admin123"
	DefaultAdminName     = "Admin User"
)

// sampleArticles are inserted on a fresh database so the public site has
// something to render in development.
var sampleArticles = []struct {
	title, slug, summary, content, date string
	tags, images                        string
}{
	{
		title:   "Vietnam tech startup funding 2024",
		slug:    "vietnam-tech-startup-funding-2024",
		summary: "Venture capital keeps flowing into Vietnamese startups.",
		content: "## Funding rounds\n\nInvestors closed a record number of seed rounds this year.",
		date:    "2024-03-12",
		tags:    `["startup","vietnam","funding"]`,
		images:  `["/static/images/github-traffic.png"]`,
	},
	{
		title:   "Vietnam AI development 2024",
		slug:    "vietnam-ai-development-2024",
		summary: "Local teams ship language models tuned for Vietnamese.",
		content: "Research labs in Hanoi and Ho Chi Minh City published new models.\n\n```go\nfmt.Println(\"xin chào\")\n```",
		date:    "2024-04-02",
		tags:    `["ai","vietnam"]`,
		images:  `["/static/images/debug-in-nodejs.png"]`,
	},
	{
		title:   "Vietnam 5G network expansion",
		slug:    "vietnam-5g-network-expansion",
		summary: "Carriers extend 5G coverage to every province.",
		content: "Operators announced nationwide rollout plans.",
		date:    "2024-05-20",
		tags:    `["telecom","vietnam"]`,
		images:  `["/static/images/ocean.jpeg"]`,
	},
}

// Seed populates the database with initial development data: the default
// admin user and, when the articles table is empty, a few sample articles.
// It is safe to call repeatedly.
func Seed(ctx context.Context, db *sql.DB) error {
	adminID, err := EnsureAdmin(ctx, db)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return fmt.Errorf("seed check articles: %w", err)
	}
	if count > 0 {
		slog.Info("articles already seeded, skipping")
		return nil
	}

	for _, a := range sampleArticles {
		_, err := db.ExecContext(ctx, `
			INSERT INTO articles (title, slug, summary, content, date, tags, images, author_id)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8)
		`, a.title, a.slug, a.summary, a.content, a.date, a.tags, a.images, adminID)
		if err != nil {
			return fmt.Errorf("seed insert article %s: %w", a.slug, err)
		}
	}

	slog.Info("database seeded with sample articles", "count", len(sampleArticles))
	return nil
}

// EnsureAdmin returns the id of the default admin, creating it if missing.
func EnsureAdmin(ctx context.Context, db *sql.DB) (string, error) {
	var id string
	err := db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", DefaultAdminEmail).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("seed check admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("seed bcrypt: %w", err)
	}

	err = db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, display_name, is_admin)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`, "admin", DefaultAdminEmail, string(hash), DefaultAdminName).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("default admin user created", "email", DefaultAdminEmail)
	return id, nil
}
