// Package gateway describes the managed backend the bookmark core talks to:
// request/response calls for the bookmark table, a change-notification
// channel, and the identity bound to a session.
package gateway

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
)

// EventKind is the type of row change carried by an Event.
type EventKind string

const (
	Created EventKind = "INSERT"
	Deleted EventKind = "DELETE"
	Updated EventKind = "UPDATE"
)

// AllKinds subscribes to every change.
var AllKinds = []EventKind{Created, Deleted, Updated}

// Event is a single change notification.
type Event struct {
	ID              string           `json:"id"`
	Kind            EventKind        `json:"eventType"`
	Table           string           `json:"table"`
	New             *domain.Bookmark `json:"new,omitempty"`
	Old             *domain.Bookmark `json:"old,omitempty"` // only ID and UserID are guaranteed
	CommitTimestamp time.Time        `json:"commit_timestamp"`
}

// NewEvent stamps an event with a fresh ULID.
func NewEvent(kind EventKind, newRow, oldRow *domain.Bookmark, at time.Time) Event {
	return Event{
		ID:              ulid.Make().String(),
		Kind:            kind,
		Table:           domain.TableBookmarks,
		New:             newRow,
		Old:             oldRow,
		CommitTimestamp: at,
	}
}

// ListOptions restricts ListBookmarks. Limit <= 0 means no limit.
type ListOptions struct {
	Limit int
}

// CountFilter restricts CountBookmarks. A zero Since counts everything.
type CountFilter struct {
	Since time.Time
}

// Client is a backend handle scoped to one session.
//
// Row-level policy is the backend's job: a client only sees, counts,
// deletes and hears about rows owned by its user.
type Client interface {
	// CurrentUser returns the session user, or false when unauthenticated.
	CurrentUser(ctx context.Context) (string, bool)

	// ListBookmarks returns the owner's rows, newest first.
	ListBookmarks(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Bookmark, error)

	CountBookmarks(ctx context.Context, ownerID string, filter CountFilter) (int, error)

	// InsertBookmark stores rec and returns the row with its backend
	// assigned ID and CreatedAt.
	InsertBookmark(ctx context.Context, rec domain.NewBookmark) (domain.Bookmark, error)

	// DeleteBookmark removes a row by id. Missing or foreign rows are a no-op.
	DeleteBookmark(ctx context.Context, id string) error

	// Subscribe opens a change stream on table for the given kinds.
	// The caller owns the returned Subscription and must Unsubscribe it.
	Subscribe(ctx context.Context, table string, kinds ...EventKind) (*Subscription, error)
}

// Backend hands out session-scoped clients.
type Backend interface {
	Session(userID string) Client
	Ping(ctx context.Context) error
	Kind() string
}
