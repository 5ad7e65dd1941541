package handler

import (
	"net/http"
)

type statusMessage struct {
	Message string `json:"message"`
}

// ServeRoot reports that the backend is up.
func ServeRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, statusMessage{Message: "Chat backend is running"})
	}
}

// ServeHello is the API liveness probe used by frontend smoke checks.
func ServeHello() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, statusMessage{Message: "Hello from the backend API!"})
	}
}
