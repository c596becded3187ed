// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"newsbombs/internal/auth"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal.
	PrincipalKey contextKey = "principal"
)

// Authenticator resolves a bearer token to a principal. *auth.Authenticator
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
}

// LoadPrincipal authenticates the bearer token if one is present and
// stores the principal in the request context. It never rejects a request.
func LoadPrincipal(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := RequestToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				slog.Debug("ignoring invalid token", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), PrincipalKey, p)))
		})
	}
}

// RequireBearer rejects requests without a valid bearer token with 401
// and stores the principal in the context for downstream handlers.
func RequireBearer(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				if !errors.Is(err, auth.ErrUnauthorized) {
					slog.Error("authentication failed", "path", r.URL.Path, "error", err)
				}
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), PrincipalKey, p)))
		})
	}
}

// RequireAdmin returns 403 if the authenticated principal is not an admin.
// Must be applied after RequireBearer.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromCtx(r.Context())
		if p == nil || !p.IsAdmin {
			WriteError(w, http.StatusForbidden, "Forbidden resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromCtx extracts the principal from the request context.
// Returns nil if the request is not authenticated.
func PrincipalFromCtx(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(PrincipalKey).(*auth.Principal)
	return p
}

// BearerToken returns the token from "Authorization: Bearer <token>", or
// "" when the header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequestToken is BearerToken with a fallback to the token query
// parameter when no Authorization header is sent. Only LoadPrincipal
// reads it, so query tokens never grant access to guarded routes.
func RequestToken(r *http.Request) string {
	if r.Header.Get("Authorization") != "" {
		return BearerToken(r)
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
