package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the field a projection orders by.
type SortKey string

const (
	SortByDate  SortKey = "date"
	SortByTitle SortKey = "title"
)

// SortDirection flips the comparator.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Query holds every input of a projection besides the collection itself.
type Query struct {
	Text      string        `json:"q"`
	Key       SortKey       `json:"sort"`
	Direction SortDirection `json:"dir"`
}

// DefaultQuery shows everything, newest first.
func DefaultQuery() Query {
	return Query{Key: SortByDate, Direction: Descending}
}

// ParseSortKey accepts "date" or "title". Empty means date.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByDate:
		return SortByDate, nil
	case SortByTitle:
		return SortByTitle, nil
	default:
		return "", &ValidationError{Field: "sort", Reason: "must be one of date, title"}
	}
}

// ParseSortDirection accepts "asc" or "desc". Empty means desc.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case "", Descending:
		return Descending, nil
	case Ascending:
		return Ascending, nil
	default:
		return "", &ValidationError{Field: "dir", Reason: "must be one of asc, desc"}
	}
}

// ParseQuery builds a Query from raw request values.
func ParseQuery(text, key, dir string) (Query, error) {
	k, err := ParseSortKey(key)
	if err != nil {
		return Query{}, err
	}
	d, err := ParseSortDirection(dir)
	if err != nil {
		return Query{}, err
	}
	return Query{Text: text, Key: k, Direction: d}, nil
}

// Project filters and orders items for display.
//
// A bookmark is kept when the query is blank, or when the lower-cased
// query is a substring of the lower-cased title or URL. Ordering is
// stable, so ties keep their input order in both directions. The input
// slice is never modified.
func Project(items []Bookmark, q Query) []Bookmark {
	result := make([]Bookmark, 0, len(items))

	needle := ""
	if strings.TrimSpace(q.Text) != "" {
		needle = strings.ToLower(q.Text)
	}
	for _, b := range items {
		if needle == "" || Matches(b, needle) {
			result = append(result, b)
		}
	}

	cmp := comparator(q.Key)
	if q.Direction == Ascending {
		slices.SortStableFunc(result, cmp)
	} else {
		slices.SortStableFunc(result, func(a, b Bookmark) int { return cmp(b, a) })
	}

	return result
}

// Matches reports whether needle (already lower-cased) occurs in the
// title or the URL of b.
func Matches(b Bookmark, needle string) bool {
	return strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.URL), needle)
}

func comparator(key SortKey) func(a, b Bookmark) int {
	if key == SortByTitle {
		// collate.Collator is not safe for concurrent use, one per projection.
		col := collate.New(language.Und)
		return func(a, b Bookmark) int {
			return col.CompareString(
				strings.ToLower(a.DisplayTitle()),
				strings.ToLower(b.DisplayTitle()),
			)
		}
	}
	return func(a, b Bookmark) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
