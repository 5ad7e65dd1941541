// Package handler wires HTTP requests to the message store and the upload
// directory. Handlers are closures over their dependencies so tests can
// inject fakes.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aumanu2/chatdrop/internal/apperr"
)

// errorBody is the envelope every failed request gets.
type errorBody struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("handler: failed to encode response", "error", err)
	}
}

// respondError logs the full error and answers with the public detail.
// Validation messages are written for the client; everything else is
// collapsed to a fixed phrase so internals never leak.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", "error", err, "status", status)
	} else {
		log.WarnContext(r.Context(), "request rejected", "error", err, "status", status)
	}
	respondJSON(w, status, errorBody{Detail: publicDetail(err)})
}

func publicDetail(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return err.Error()
	case apperr.KindStorage:
		return "Database not available"
	default:
		return "Internal server error"
	}
}

// NotFound answers unknown paths with the API error shape instead of the
// router's plain-text default.
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, errorBody{Detail: "Not Found"})
	}
}

func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method Not Allowed"})
	}
}
