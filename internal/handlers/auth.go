package handlers

import (
	"errors"
	"net/http"

	"newsbombs/internal/auth"
	"newsbombs/internal/middleware"
	"newsbombs/internal/models"
)

// Auth groups the token endpoints under /api/auth.
type Auth struct {
	auth *auth.Authenticator
}

// NewAuth creates a new Auth handler group.
func NewAuth(a *auth.Authenticator) *Auth {
	return &Auth{auth: a}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// Login exchanges credentials (and a one-time code for users with 2FA)
// for a bearer token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	var msgs []string
	if in.Email == "" {
		msgs = append(msgs, "email should not be empty")
	}
	if in.Password == "" {
		msgs = append(msgs, "password should not be empty")
	}
	if len(msgs) > 0 {
		writeError(w, r, &requestError{status: http.StatusBadRequest, messages: msgs})
		return
	}

	token, user, err := h.auth.Login(r.Context(), in.Email, in.Password, in.Code)
	switch {
	case errors.Is(err, auth.ErrTOTPRequired):
		middleware.WriteError(w, http.StatusUnauthorized, "Two-factor code required")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case err != nil:
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: user})
}

// Profile returns the caller's user record.
func (h *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.Profile(r.Context(), middleware.PrincipalFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Logout revokes the caller's token.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.PrincipalFromCtx(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// TOTPSetup generates a new authenticator secret and its QR code.
func (h *Auth) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := h.auth.SetupTOTP(r.Context(), middleware.PrincipalFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, setup)
}

// TOTPEnable turns on 2FA after the caller proves a valid code.
func (h *Auth) TOTPEnable(w http.ResponseWriter, r *http.Request) {
	var in codeRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.auth.EnableTOTP(r.Context(), middleware.PrincipalFromCtx(r.Context()), in.Code)
	if errors.Is(err, auth.ErrTOTPRequired) {
		badRequest(w, "Invalid two-factor code")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"totpEnabled": true})
}
