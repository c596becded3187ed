// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth issues and validates bearer tokens for the editorial API.
// Tokens are HS256 JWTs whose subject is the user id; a token is accepted
// only while its user still exists and its id has not been revoked.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"newsbombs/internal/models"
)

// DefaultSecret signs tokens when JWT_SECRET is not configured.
const DefaultSecret = "newsbombs-super-secret-key-2024"

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

var (
	// ErrUnauthorized is returned for any rejected token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned when email or password is wrong.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	// ErrTOTPRequired is returned when a second factor is needed or wrong.
	ErrTOTPRequired = fmt.Errorf("%w: two-factor code required", ErrUnauthorized)
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Users is the user lookup the authenticator needs. *store.UserStore
// satisfies it; lookups return (nil, nil) when nothing matches.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
}

// Revoker remembers logged-out token ids until they expire.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates tokens.
type Authenticator struct {
	users   Users
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	issuer  string
	now     func() time.Time
}

// NewAuthenticator creates an Authenticator. revoker may be nil, in which
// case logout cannot invalidate tokens before they expire.
func NewAuthenticator(users Users, secret string, ttl time.Duration, revoker Revoker) *Authenticator {
	if secret == "" {
		secret = DefaultSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Authenticator{
		users:   users,
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		issuer:  "newsbombs",
		now:     time.Now,
	}
}

// Issue signs a token for the user and returns it with its expiry.
func (a *Authenticator) Issue(u *models.User) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	c := claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    a.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Login checks credentials and, when the user has 2FA enabled, the
// one-time code. It returns a signed token and the user.
func (a *Authenticator) Login(ctx context.Context, email, password, code string) (string, *models.User, error) {
	u, err := a.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", nil, fmt.Errorf("login lookup: %w", err)
	}
	if u == nil || !a.users.CheckPassword(u, password) {
		return "", nil, ErrInvalidCredentials
	}
	if u.RequiresTOTP() && !ValidateCode(code, *u.TOTPSecret, a.now()) {
		return "", nil, ErrTOTPRequired
	}

	token, _, err := a.Issue(u)
	if err != nil {
		return "", nil, err
	}
	slog.Info("user logged in", "user_id", u.ID, "email", u.Email)
	return token, u, nil
}

// Authenticate validates a bearer token and resolves its principal.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrUnauthorized)
	}

	if a.revoker != nil && c.ID != "" {
		revoked, err := a.revoker.IsRevoked(ctx, c.ID)
		if err != nil {
			slog.Warn("token revocation check failed", "error", err)
		} else if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
		}
	}

	u, err := a.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("authenticate lookup: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: unknown user", ErrUnauthorized)
	}

	p := &Principal{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin, TokenID: c.ID}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// Logout revokes the principal's token until it would have expired.
func (a *Authenticator) Logout(ctx context.Context, p *Principal) error {
	if a.revoker == nil || p == nil || p.TokenID == "" {
		return nil
	}
	if err := a.revoker.Revoke(ctx, p.TokenID, p.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	slog.Info("user logged out", "user_id", p.ID)
	return nil
}

// Profile returns the user behind a principal.
func (a *Authenticator) Profile(ctx context.Context, p *Principal) (*models.User, error) {
	u, err := a.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("profile lookup: %w", err)
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}
