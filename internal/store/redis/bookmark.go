package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// InsertBookmark stores a bookmark and publishes its INSERT event
func (s *Session) InsertBookmark(ctx context.Context, rec domain.NewBookmark) (domain.Bookmark, error) {
	if s.userID == "" {
		return domain.Bookmark{}, domain.ErrNotAuthenticated
	}
	if rec.UserID != s.userID {
		return domain.Bookmark{}, fmt.Errorf("new row violates row-level security policy for table %q", domain.TableBookmarks)
	}

	bookmark := domain.Bookmark{
		ID:        s.store.newID(),
		URL:       rec.URL,
		Title:     rec.Title,
		CreatedAt: s.store.now().UTC(),
		UserID:    rec.UserID,
	}

	data, err := json.Marshal(bookmark)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to marshal bookmark: %w", err)
	}
	created := bookmark
	event, err := json.Marshal(gateway.NewEvent(gateway.Created, &created, nil, bookmark.CreatedAt))
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, BookmarkKey(bookmark.ID), data, 0)
		pipe.ZAdd(ctx, UserBookmarksKey(s.userID), redis.Z{
			Score:  float64(bookmark.CreatedAt.UnixMilli()),
			Member: bookmark.ID,
		})
		pipe.Publish(ctx, EventsChannel(s.userID), event)
		return nil
	})
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to save bookmark: %w", err)
	}

	return bookmark, nil
}

// ListBookmarks returns the owner's bookmarks, newest first
func (s *Session) ListBookmarks(ctx context.Context, ownerID string, opts gateway.ListOptions) ([]domain.Bookmark, error) {
	if s.userID == "" || ownerID != s.userID {
		return []domain.Bookmark{}, nil
	}

	stop := int64(-1)
	if opts.Limit > 0 {
		stop = int64(opts.Limit) - 1
	}
	ids, err := s.store.client.ZRevRange(ctx, UserBookmarksKey(ownerID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}
	values, err := s.store.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a row, skip it
			s.store.logger.Debug("dangling bookmark index entry",
				logger.String("id", ids[i]))
			continue
		}
		var bookmark domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &bookmark); err != nil {
			s.store.logger.Warn("skipping unreadable bookmark",
				logger.String("id", ids[i]),
				logger.Error(err))
			continue
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}

// CountBookmarks counts the owner's bookmarks created at or after filter.Since
func (s *Session) CountBookmarks(ctx context.Context, ownerID string, filter gateway.CountFilter) (int, error) {
	if s.userID == "" || ownerID != s.userID {
		return 0, nil
	}

	lower := "-inf"
	if !filter.Since.IsZero() {
		lower = strconv.FormatInt(filter.Since.UnixMilli(), 10)
	}
	n, err := s.store.client.ZCount(ctx, UserBookmarksKey(ownerID), lower, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return int(n), nil
}

// DeleteBookmark removes one of the session user's bookmarks and publishes
// its DELETE event. Rows owned by someone else are left alone.
func (s *Session) DeleteBookmark(ctx context.Context, id string) error {
	if s.userID == "" {
		return domain.ErrNotAuthenticated
	}

	data, err := s.store.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to get bookmark: %w", err)
	}

	var bookmark domain.Bookmark
	if err := json.Unmarshal(data, &bookmark); err != nil {
		return fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	if bookmark.UserID != s.userID {
		s.store.logger.Debug("delete filtered by row-level policy",
			logger.String("id", id))
		return nil
	}

	old := domain.Bookmark{ID: bookmark.ID, UserID: bookmark.UserID}
	event, err := json.Marshal(gateway.NewEvent(gateway.Deleted, nil, &old, s.store.now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, BookmarkKey(id))
		pipe.ZRem(ctx, UserBookmarksKey(s.userID), id)
		pipe.Publish(ctx, EventsChannel(s.userID), event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}
