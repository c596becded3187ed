// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON error envelope shared by every API response.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error,omitempty"`
}

// WriteError writes the error envelope with only a status and a message.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteErrorBody(w, ErrorBody{StatusCode: status, Message: message})
}

// WriteErrorBody writes a complete error envelope.
func WriteErrorBody(w http.ResponseWriter, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(body.StatusCode)
	json.NewEncoder(w).Encode(body)
}
