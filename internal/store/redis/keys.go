package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark row keys
	KeyPrefixBookmark = "sb:bookmark:"
	// KeyPrefixUser is the prefix for per-user indexes
	KeyPrefixUser = "sb:user:"
	// KeyPrefixEvents is the prefix for per-user change channels
	KeyPrefixEvents = "sb:events:"
)

// BookmarkKey returns the Redis key for a bookmark row
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// UserBookmarksKey returns the sorted set of a user's bookmark IDs,
// scored by creation time in milliseconds
func UserBookmarksKey(owner string) string {
	return KeyPrefixUser + owner + ":bookmarks"
}

// EventsChannel returns the Pub/Sub channel carrying a user's change events
func EventsChannel(owner string) string {
	return KeyPrefixEvents + owner
}
