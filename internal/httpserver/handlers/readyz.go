package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

const pingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

// Readyz answers 200 once the backend responds to a ping, 503 otherwise.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := d.Backend.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{
				Backend: d.Backend.Kind(),
				Error:   err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Backend: d.Backend.Kind()})
	}
}
