package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/mw"
)

func init() { Register(registerLive) }

// The live route is long-lived, so it carries no request timeout.
func registerLive(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/api/live", handlers.Live(d))
}
