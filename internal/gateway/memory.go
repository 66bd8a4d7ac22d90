package gateway

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
)

// MemoryBackend keeps rows and subscribers in process. It backs the
// "memory" deployment mode and the tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	rows   map[string]domain.Bookmark        // ID -> row
	subs   map[string]map[*Subscription]bool // owner -> live subscriptions
	buffer int
	now    func() time.Time
}

// NewMemoryBackend creates an empty backend. buffer sizes each
// subscription's event queue.
func NewMemoryBackend(buffer int) *MemoryBackend {
	return &MemoryBackend{
		rows:   make(map[string]domain.Bookmark),
		subs:   make(map[string]map[*Subscription]bool),
		buffer: buffer,
		now:    time.Now,
	}
}

// SetClock overrides the insertion clock.
func (m *MemoryBackend) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryBackend) Kind() string { return "memory" }

func (m *MemoryBackend) Ping(context.Context) error { return nil }

// Session returns a client bound to userID. An empty userID yields an
// unauthenticated client.
func (m *MemoryBackend) Session(userID string) Client {
	return &memorySession{backend: m, userID: userID}
}

// Interrupt drops every open subscription as if the channel died.
func (m *MemoryBackend) Interrupt() {
	m.mu.Lock()
	var all []*Subscription
	for owner, set := range m.subs {
		for sub := range set {
			all = append(all, sub)
		}
		delete(m.subs, owner)
	}
	m.mu.Unlock()

	for _, sub := range all {
		sub.Interrupt(domain.ErrChannelInterrupted)
	}
}

// Subscribers returns the number of open subscriptions for owner.
func (m *MemoryBackend) Subscribers(owner string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[owner])
}

func (m *MemoryBackend) broadcast(owner string, ev Event) {
	m.mu.RLock()
	targets := make([]*Subscription, 0, len(m.subs[owner]))
	for sub := range m.subs[owner] {
		targets = append(targets, sub)
	}
	m.mu.RUnlock()

	for _, sub := range targets {
		sub.Publish(ev)
	}
}

type memorySession struct {
	backend *MemoryBackend
	userID  string
}

func (s *memorySession) CurrentUser(context.Context) (string, bool) {
	return s.userID, s.userID != ""
}

func (s *memorySession) ListBookmarks(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.userID == "" || ownerID != s.userID {
		return []domain.Bookmark{}, nil
	}

	s.backend.mu.RLock()
	rows := make([]domain.Bookmark, 0)
	for _, b := range s.backend.rows {
		if b.UserID == ownerID {
			rows = append(rows, b)
		}
	}
	s.backend.mu.RUnlock()

	slices.SortStableFunc(rows, func(a, b domain.Bookmark) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	return rows, nil
}

func (s *memorySession) CountBookmarks(ctx context.Context, ownerID string, filter CountFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.userID == "" || ownerID != s.userID {
		return 0, nil
	}

	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	n := 0
	for _, b := range s.backend.rows {
		if b.UserID != ownerID {
			continue
		}
		if !filter.Since.IsZero() && b.CreatedAt.Before(filter.Since) {
			continue
		}
		n++
	}
	return n, nil
}

func (s *memorySession) InsertBookmark(ctx context.Context, rec domain.NewBookmark) (domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bookmark{}, err
	}
	if s.userID == "" {
		return domain.Bookmark{}, domain.ErrNotAuthenticated
	}
	if rec.UserID != s.userID {
		return domain.Bookmark{}, fmt.Errorf("new row violates row-level security policy for table %q", domain.TableBookmarks)
	}

	s.backend.mu.Lock()
	row := domain.Bookmark{
		ID:        uuid.NewString(),
		URL:       rec.URL,
		Title:     rec.Title,
		CreatedAt: s.backend.now().UTC(),
		UserID:    rec.UserID,
	}
	s.backend.rows[row.ID] = row
	s.backend.mu.Unlock()

	created := row
	s.backend.broadcast(row.UserID, NewEvent(Created, &created, nil, row.CreatedAt))
	return row, nil
}

func (s *memorySession) DeleteBookmark(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.userID == "" {
		return domain.ErrNotAuthenticated
	}

	s.backend.mu.Lock()
	row, ok := s.backend.rows[id]
	if !ok || row.UserID != s.userID {
		s.backend.mu.Unlock()
		return nil
	}
	delete(s.backend.rows, id)
	now := s.backend.now().UTC()
	s.backend.mu.Unlock()

	old := domain.Bookmark{ID: row.ID, UserID: row.UserID}
	s.backend.broadcast(row.UserID, NewEvent(Deleted, nil, &old, now))
	return nil
}

func (s *memorySession) Subscribe(ctx context.Context, table string, kinds ...EventKind) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if table != domain.TableBookmarks {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	if s.userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	b := s.backend
	owner := s.userID
	var sub *Subscription
	sub = NewSubscription(b.buffer, kinds, func() {
		b.mu.Lock()
		delete(b.subs[owner], sub)
		if len(b.subs[owner]) == 0 {
			delete(b.subs, owner)
		}
		b.mu.Unlock()
	})

	b.mu.Lock()
	if b.subs[owner] == nil {
		b.subs[owner] = make(map[*Subscription]bool)
	}
	b.subs[owner][sub] = true
	b.mu.Unlock()

	return sub, nil
}
