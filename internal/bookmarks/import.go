package bookmarks

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// Entry is one bookmark to import.
type Entry struct {
	Title    string
	URL      string
	Category string
}

// ImportResult summarises an import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import adds entries one by one through Add. Invalid entries and URLs
// the user already saved are skipped; authentication and gateway errors
// stop the run and are returned with the partial result.
func (c *Commands) Import(ctx context.Context, entries []Entry) (ImportResult, error) {
	var result ImportResult

	userID, ok := c.client.CurrentUser(ctx)
	if !ok {
		return result, domain.ErrNotAuthenticated
	}

	existing, err := c.client.ListBookmarks(ctx, userID, gateway.ListOptions{})
	if err != nil {
		return result, domain.NewGatewayError("list", err)
	}
	known := make(map[string]bool, len(existing))
	for _, b := range existing {
		known[b.URL] = true
	}

	for _, e := range entries {
		u, err := ValidateURL(e.URL)
		if err != nil || known[u] {
			result.Skipped++
			continue
		}

		if _, err := c.Add(ctx, u, e.Title); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				result.Skipped++
				continue
			}
			return result, err
		}
		known[u] = true
		result.Imported++
	}

	c.logger.Info("bookmarks imported",
		logger.String("user", userID),
		logger.Int("imported", result.Imported),
		logger.Int("skipped", result.Skipped))
	return result, nil
}
