package homepage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
)

// BookmarkMapper converts Homepage bookmark config to import entries
type BookmarkMapper struct{}

// NewBookmarkMapper creates a new bookmark mapper
func NewBookmarkMapper() *BookmarkMapper {
	return &BookmarkMapper{}
}

// MapBookmarks flattens BookmarksConfig into import entries.
// Entries follow file order for categories and name order within a
// category map; a href seen twice keeps its first entry.
func (m *BookmarkMapper) MapBookmarks(config BookmarksConfig) ([]bookmarks.Entry, error) {
	entries := make([]bookmarks.Entry, 0)
	seen := make(map[string]bool)

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entryList := bookmarkMap[bookmarkName]
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					href := strings.TrimSpace(entry.Href)
					if href == "" || seen[href] {
						continue
					}
					seen[href] = true

					title := strings.TrimSpace(bookmarkName)
					if title == "" {
						title = entry.Abbr
					}

					entries = append(entries, bookmarks.Entry{
						Title:    title,
						URL:      href,
						Category: categoryName,
					})
				}
			}
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in config")
	}

	return entries, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
