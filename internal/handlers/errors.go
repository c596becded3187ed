// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"newsbombs/internal/articles"
	"newsbombs/internal/auth"
	"newsbombs/internal/middleware"
	"newsbombs/internal/upload"
)

// Messages sent to clients for upload failures.
const (
	msgOnlyImages = "Only image files are allowed!"
	msgTooLarge   = "File too large"
	msgNoFile     = "No file uploaded"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// badRequest writes a 400 with a single message.
func badRequest(w http.ResponseWriter, message string) {
	middleware.WriteErrorBody(w, middleware.ErrorBody{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Error:      "Bad Request",
	})
}

// notFound writes a 404 with message.
func notFound(w http.ResponseWriter, message string) {
	middleware.WriteErrorBody(w, middleware.ErrorBody{
		StatusCode: http.StatusNotFound,
		Message:    message,
		Error:      "Not Found",
	})
}

// writeError maps a service error to its HTTP status and envelope. Errors
// outside the known taxonomy are logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *articles.ValidationError
		re *requestError
	)
	switch {
	case errors.As(err, &re):
		body := middleware.ErrorBody{StatusCode: re.status, Message: re.messages, Error: "Bad Request"}
		if re.status == http.StatusRequestEntityTooLarge {
			body.Message = re.messages[0]
			body.Error = "Payload Too Large"
		}
		middleware.WriteErrorBody(w, body)
	case errors.As(err, &ve):
		middleware.WriteErrorBody(w, middleware.ErrorBody{
			StatusCode: http.StatusBadRequest,
			Message:    ve.Messages(),
			Error:      "Bad Request",
		})
	case errors.Is(err, articles.ErrNotFound):
		notFound(w, "Article not found")
	case errors.Is(err, upload.ErrUnsupportedType):
		badRequest(w, msgOnlyImages)
	case errors.Is(err, upload.ErrNoFile):
		badRequest(w, msgNoFile)
	case errors.Is(err, upload.ErrTooLarge):
		middleware.WriteErrorBody(w, middleware.ErrorBody{
			StatusCode: http.StatusRequestEntityTooLarge,
			Message:    msgTooLarge,
			Error:      "Payload Too Large",
		})
	case errors.Is(err, auth.ErrUnauthorized):
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// uploadMessage returns the client-facing text for an upload error.
func uploadMessage(err error) (int, string) {
	switch {
	case errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusBadRequest, msgOnlyImages
	case errors.Is(err, upload.ErrNoFile):
		return http.StatusBadRequest, msgNoFile
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	default:
		return http.StatusInternalServerError, "Upload failed"
	}
}
