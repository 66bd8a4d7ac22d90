package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Kind    string `json:"kind,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int64 `json:"count,omitempty"`
	Pending *int   `json:"pending,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the backend and of the live layer.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var live int64
		if d.LiveSessions != nil {
			live = d.LiveSessions.Load()
		}
		pending := 0
		if d.Pending != nil {
			pending = d.Pending.Len()
		}

		components := map[string]componentStatus{
			"backend": checkBackend(r.Context(), d),
			"live": {
				OK:      true,
				Count:   &live,
				Pending: &pending,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if backend, ok := components["backend"]; ok && !backend.OK {
		return "unavailable"
	}
	return "operational"
}

func checkBackend(ctx context.Context, d deps.Deps) componentStatus {
	if d.Backend == nil {
		return componentStatus{
			OK:     false,
			Impact: "bookmarks-unavailable",
			Error:  "backend not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.Backend.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Kind:   d.Backend.Kind(),
			Impact: "bookmarks-unavailable",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Kind:   d.Backend.Kind(),
		Mode:   "optimal",
		Impact: "none",
	}
}
