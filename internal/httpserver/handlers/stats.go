package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
)

// Stats serves the dashboard summary.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmds := bookmarks.NewCommands(clientFor(r.Context(), d), d.Pending, d.Logger)
		stats, err := cmds.Dashboard(r.Context(), d.Now(), d.Location, d.RecentLimit)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
