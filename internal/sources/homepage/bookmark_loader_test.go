package homepage

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleBookmarks = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go Docs:
        - abbr: GO
          href: https://go.dev/doc/
- Social:
    - Reddit:
        - abbr: RE
          href: {{HOMEPAGE_VAR_REDDIT_URL}}
    - Github mirror:
        - abbr: GM
          href: https://github.com/
`

func TestBookmarkLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(sampleBookmarks), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	config, err := NewBookmarkLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(config) != 2 {
		t.Fatalf("Load() returned %d categories, want 2", len(config))
	}
}

func TestBookmarkLoaderMissingFile(t *testing.T) {
	if _, err := NewBookmarkLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestParseBookmarksInvalid(t *testing.T) {
	if _, err := ParseBookmarks([]byte("- Developer: [unclosed")); err == nil {
		t.Error("ParseBookmarks() should fail on invalid yaml")
	}
}

func TestMapBookmarks(t *testing.T) {
	config, err := ParseBookmarks([]byte(sampleBookmarks))
	if err != nil {
		t.Fatalf("ParseBookmarks() error = %v", err)
	}

	entries, err := NewBookmarkMapper().MapBookmarks(config)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}

	want := []struct{ title, url, category string }{
		{"Github", "https://github.com/", "Developer"},
		{"Go Docs", "https://go.dev/doc/", "Developer"},
	}
	if len(entries) != len(want) {
		t.Fatalf("MapBookmarks() returned %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, w := range want {
		e := entries[i]
		if e.Title != w.title || e.URL != w.url || e.Category != w.category {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
	}
}

func TestMapBookmarksEmpty(t *testing.T) {
	if _, err := NewBookmarkMapper().MapBookmarks(BookmarksConfig{}); err == nil {
		t.Error("MapBookmarks() should fail on an empty config")
	}
}
