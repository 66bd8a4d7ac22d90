package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/smartbookmark/internal/auth"
	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// Error kinds shared by the REST and live APIs.
const (
	KindValidation       = "validation"
	KindNotAuthenticated = "not_authenticated"
	KindNoPendingDelete  = "no_pending_delete"
	KindGateway          = "gateway"
	KindBadRequest       = "bad_request"
	KindInternal         = "internal"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// classify maps an error to its kind and HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return KindValidation, http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated):
		return KindNotAuthenticated, http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoPendingDelete):
		return KindNoPendingDelete, http.StatusConflict
	case errors.Is(err, domain.ErrGateway):
		return KindGateway, http.StatusBadGateway
	default:
		return KindInternal, http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	kind, status := classify(err)
	msg := err.Error()
	if kind == KindInternal {
		log.Error("unexpected handler error", logger.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Kind: kind, Message: msg})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Kind: KindBadRequest, Message: msg})
}

// clientFor binds a backend session to the request's user. Anonymous
// requests get an unauthenticated client so commands report it themselves.
func clientFor(ctx context.Context, d deps.Deps) gateway.Client {
	userID, _ := auth.UserFromContext(ctx)
	return d.Backend.Session(userID)
}
