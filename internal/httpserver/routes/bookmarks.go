package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	api := r.With(
		middleware.Timeout(requestTimeout(d)),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	writes := api.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}))

	api.Get("/api/bookmarks", handlers.ListBookmarks(d))
	api.Get("/api/stats", handlers.Stats(d))
	writes.Post("/api/bookmarks", handlers.AddBookmark(d))
	writes.Post("/api/bookmarks/{id}/delete-request", handlers.RequestDelete(d))
	writes.Delete("/api/bookmarks/{id}/delete-request", handlers.CancelDelete(d))
	writes.Delete("/api/bookmarks/{id}", handlers.ConfirmDelete(d))
	writes.Post("/api/import", handlers.Import(d))
}
