package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aumanu2/chatdrop/internal/store"
)

const (
	diagnosticsTimeout  = 5 * time.Second
	maxDiagCollections  = 10
	maxDiagErrorMessage = 50
)

type diagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// ServeDiagnostics probes the database live and reports what it finds.
// The shape is for humans poking a deployment, not a stable contract, and
// the response is always HTTP 200.
func ServeDiagnostics(log *slog.Logger, db store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := diagnosticsResponse{
			Backend:          "running",
			Database:         "not available",
			DatabaseURL:      envStatus("DATABASE_URL"),
			DatabaseName:     envStatus("DATABASE_NAME"),
			ConnectionStatus: "not connected",
			Collections:      []string{},
		}

		if db != nil {
			resp.ConnectionStatus = "connected"

			ctx, cancel := context.WithTimeout(r.Context(), diagnosticsTimeout)
			defer cancel()

			if err := db.Ping(ctx); err != nil {
				log.WarnContext(r.Context(), "diagnostics ping failed", "error", err)
				resp.Database = fmt.Sprintf("error: %s", truncate(err.Error(), maxDiagErrorMessage))
			} else if names, err := db.Collections(ctx); err != nil {
				log.WarnContext(r.Context(), "diagnostics collection listing failed", "error", err)
				resp.Database = fmt.Sprintf("connected but error: %s", truncate(err.Error(), maxDiagErrorMessage))
			} else {
				if len(names) > maxDiagCollections {
					names = names[:maxDiagCollections]
				}
				resp.Collections = append(resp.Collections, names...)
				resp.Database = "connected and working"
			}
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "set"
	}
	return "not set"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
