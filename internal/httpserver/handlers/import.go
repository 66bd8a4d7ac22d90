package handlers

import (
	"io"
	"net/http"

	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
	"github.com/MrSnakeDoc/smartbookmark/internal/sources/homepage"
)

// Import adds the bookmarks of a homepage bookmarks.yaml sent as the body.
func Import(d deps.Deps) http.HandlerFunc {
	mapper := homepage.NewBookmarkMapper()
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientFor(r.Context(), d)
		if _, ok := client.CurrentUser(r.Context()); !ok {
			writeError(w, d.Logger, domain.ErrNotAuthenticated)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeBadRequest(w, "body too large or unreadable")
			return
		}

		cfg, err := homepage.ParseBookmarks(body)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		entries, err := mapper.MapBookmarks(cfg)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}

		cmds := bookmarks.NewCommands(client, d.Pending, d.Logger)
		result, err := cmds.Import(r.Context(), entries)
		if err != nil {
			d.Logger.Warn("import stopped early",
				logger.Int("imported", result.Imported),
				logger.Error(err))
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
