// Package bookmarks holds the user-initiated operations on bookmarks.
//
// Commands write through the gateway and never touch a view: the change
// channel is the only path by which results become visible.
package bookmarks

import (
	"context"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// Commands runs mutations for one session.
type Commands struct {
	client  gateway.Client
	pending *PendingDeletes
	logger  logger.Logger
}

// NewCommands binds the session client and the shared pending registry.
func NewCommands(client gateway.Client, pending *PendingDeletes, log logger.Logger) *Commands {
	if pending == nil {
		pending = NewPendingDeletes(DefaultConfirmTTL)
	}
	return &Commands{
		client:  client,
		pending: pending,
		logger:  log,
	}
}

// ValidateURL trims rawURL and checks it is an absolute URL.
func ValidateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", &domain.ValidationError{Field: "url", Reason: "is required"}
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &domain.ValidationError{Field: "url", Reason: "must be an absolute URL"}
	}
	return trimmed, nil
}

// Add inserts a bookmark. A blank title is replaced by the URL.
func (c *Commands) Add(ctx context.Context, rawURL, title string) (domain.Bookmark, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return domain.Bookmark{}, err
	}

	userID, ok := c.client.CurrentUser(ctx)
	if !ok {
		return domain.Bookmark{}, domain.ErrNotAuthenticated
	}

	if strings.TrimSpace(title) == "" {
		title = u
	}

	row, err := c.client.InsertBookmark(ctx, domain.NewBookmark{
		URL:    u,
		Title:  title,
		UserID: userID,
	})
	if err != nil {
		c.logger.Warn("add bookmark failed",
			logger.String("user", userID),
			logger.Error(err))
		return domain.Bookmark{}, domain.NewGatewayError("insert", err)
	}

	c.logger.Debug("bookmark added",
		logger.String("user", userID),
		logger.String("id", row.ID))
	return row, nil
}

// RequestDelete starts a delete. Nothing is removed until ConfirmDelete
// is called with the returned token.
func (c *Commands) RequestDelete(ctx context.Context, id string) (Pending, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pending{}, &domain.ValidationError{Field: "id", Reason: "is required"}
	}
	userID, ok := c.client.CurrentUser(ctx)
	if !ok {
		return Pending{}, domain.ErrNotAuthenticated
	}
	return c.pending.Request(userID, id), nil
}

// ConfirmDelete performs a delete previously requested with RequestDelete.
// The request is consumed whatever the outcome; after a gateway failure
// the user has to ask again.
func (c *Commands) ConfirmDelete(ctx context.Context, id, token string) error {
	id = strings.TrimSpace(id)
	userID, ok := c.client.CurrentUser(ctx)
	if !ok {
		return domain.ErrNotAuthenticated
	}
	if !c.pending.Take(userID, id, token) {
		return domain.ErrNoPendingDelete
	}

	if err := c.client.DeleteBookmark(ctx, id); err != nil {
		c.logger.Warn("delete bookmark failed",
			logger.String("user", userID),
			logger.String("id", id),
			logger.Error(err))
		return domain.NewGatewayError("delete", err)
	}

	c.logger.Debug("bookmark deleted",
		logger.String("user", userID),
		logger.String("id", id))
	return nil
}

// CancelDelete abandons a pending delete.
func (c *Commands) CancelDelete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	userID, ok := c.client.CurrentUser(ctx)
	if !ok {
		return domain.ErrNotAuthenticated
	}
	c.pending.Cancel(userID, id)
	return nil
}
