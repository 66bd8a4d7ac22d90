package bookmarks

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
)

// DefaultRecentLimit is the size of the dashboard's recent list.
const DefaultRecentLimit = 5

// Stats is the dashboard summary of a user's collection.
type Stats struct {
	Total      int               `json:"total"`
	AddedToday int               `json:"added_today"`
	Recent     []domain.Bookmark `json:"recent"`
}

// StartOfDay returns local midnight of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Dashboard counts all bookmarks, those added since midnight in loc, and
// returns the newest recent ones.
func (c *Commands) Dashboard(ctx context.Context, now time.Time, loc *time.Location, recent int) (Stats, error) {
	userID, ok := c.client.CurrentUser(ctx)
	if !ok {
		return Stats{}, domain.ErrNotAuthenticated
	}
	if recent <= 0 {
		recent = DefaultRecentLimit
	}

	total, err := c.client.CountBookmarks(ctx, userID, gateway.CountFilter{})
	if err != nil {
		return Stats{}, domain.NewGatewayError("count", err)
	}
	today, err := c.client.CountBookmarks(ctx, userID, gateway.CountFilter{Since: StartOfDay(now, loc)})
	if err != nil {
		return Stats{}, domain.NewGatewayError("count", err)
	}
	rows, err := c.client.ListBookmarks(ctx, userID, gateway.ListOptions{Limit: recent})
	if err != nil {
		return Stats{}, domain.NewGatewayError("list", err)
	}

	return Stats{Total: total, AddedToday: today, Recent: rows}, nil
}
