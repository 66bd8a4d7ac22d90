package domain

import "time"

// TableBookmarks is the backend table holding bookmark rows.
const TableBookmarks = "bookmarks"

// Bookmark is a saved URL owned by a single user.
//
// Rows are immutable once created: the only mutation the system knows
// is deletion. Ownership is enforced by the backend, never by callers.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (assigned by the backend)
	// ─────────────────────────────

	// ID is the opaque unique identifier, used as the merge/removal key.
	ID string `json:"id"`

	// ─────────────────────────────
	// User supplied
	// ─────────────────────────────

	// URL is the bookmarked address. Never empty.
	URL string `json:"url"`

	// Title is optional. See DisplayTitle.
	Title string `json:"title"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set on insertion. Default sort key and the
	// "added today" boundary.
	CreatedAt time.Time `json:"created_at"`

	// UserID is the owning session user.
	UserID string `json:"user_id"`
}

// DisplayTitle returns the title, or the URL when no title was given.
func (b Bookmark) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	return b.URL
}

// NewBookmark is the record sent to the backend on insert.
type NewBookmark struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	UserID string `json:"user_id"`
}
