// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"newsbombs/internal/middleware"
	"newsbombs/internal/upload"
)

// editorResult is the envelope the rich text editor's upload adapter
// expects.
type editorResult struct {
	Uploaded bool         `json:"uploaded,omitempty"`
	URL      string       `json:"url,omitempty"`
	Error    *editorError `json:"error,omitempty"`
}

type editorError struct {
	Message string `json:"message"`
}

// Upload stores a single image from the "file" field.
func (h *Articles) Upload(w http.ResponseWriter, r *http.Request) {
	files, err := h.uploader.Receive(w, r, upload.AdminProfile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, files[0])
}

// UploadMultiple stores every image from the "files" field.
func (h *Articles) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	files, err := h.uploader.Receive(w, r, upload.MultipleProfile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, files)
}

// EditorUpload stores an image from the editor's "upload" field and answers
// with the editor envelope. A token is optional and only identifies the
// uploader in the log.
func (h *Articles) EditorUpload(w http.ResponseWriter, r *http.Request) {
	files, err := h.uploader.Receive(w, r, upload.EditorProfile)
	if err != nil {
		status, msg := uploadMessage(err)
		if status == http.StatusInternalServerError {
			slog.Error("editor upload failed", "error", err)
		}
		writeJSON(w, status, editorResult{Error: &editorError{Message: msg}})
		return
	}

	if p := middleware.PrincipalFromCtx(r.Context()); p != nil {
		slog.Info("editor upload", "user", p.Email, "filename", files[0].Filename)
	} else {
		slog.Info("editor upload", "user", "anonymous", "filename", files[0].Filename)
	}
	writeJSON(w, http.StatusCreated, editorResult{Uploaded: true, URL: files[0].URL})
}
