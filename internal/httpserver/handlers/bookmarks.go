package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
)

const maxBodyBytes = 1 << 20

type listResponse struct {
	Items []domain.Bookmark `json:"items"`
	Query domain.Query      `json:"query"`
	Total int               `json:"total"`
}

type addRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ListBookmarks returns the user's bookmarks filtered and sorted by the
// q, sort and dir query parameters.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		q, err := domain.ParseQuery(params.Get("q"), params.Get("sort"), params.Get("dir"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		client := clientFor(r.Context(), d)
		userID, ok := client.CurrentUser(r.Context())
		if !ok {
			writeError(w, d.Logger, domain.ErrNotAuthenticated)
			return
		}

		rows, err := client.ListBookmarks(r.Context(), userID, gateway.ListOptions{})
		if err != nil {
			writeError(w, d.Logger, domain.NewGatewayError("list", err))
			return
		}

		items := domain.Project(rows, q)
		writeJSON(w, http.StatusOK, listResponse{Items: items, Query: q, Total: len(rows)})
	}
}

// AddBookmark inserts one bookmark from a JSON body.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}

		cmds := bookmarks.NewCommands(clientFor(r.Context(), d), d.Pending, d.Logger)
		row, err := cmds.Add(r.Context(), req.URL, req.Title)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, row)
	}
}

// RequestDelete starts a two-phase delete and returns the confirmation token.
func RequestDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmds := bookmarks.NewCommands(clientFor(r.Context(), d), d.Pending, d.Logger)
		pending, err := cmds.RequestDelete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusAccepted, pending)
	}
}

// ConfirmDelete completes a delete with the token from RequestDelete.
func ConfirmDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeBadRequest(w, "token is required")
			return
		}

		cmds := bookmarks.NewCommands(clientFor(r.Context(), d), d.Pending, d.Logger)
		if err := cmds.ConfirmDelete(r.Context(), chi.URLParam(r, "id"), token); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CancelDelete drops a pending delete.
func CancelDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmds := bookmarks.NewCommands(clientFor(r.Context(), d), d.Pending, d.Logger)
		if err := cmds.CancelDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
