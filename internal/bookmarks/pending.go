package bookmarks

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultConfirmTTL bounds how long a delete request waits for confirmation.
const DefaultConfirmTTL = 30 * time.Second

// Pending is a delete awaiting confirmation.
type Pending struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingDeletes holds delete requests shared by every session of the
// process, keyed by user and bookmark.
type PendingDeletes struct {
	mu      sync.Mutex
	entries map[string]Pending // user + "/" + bookmark ID -> pending
	ttl     time.Duration
	now     func() time.Time
}

// NewPendingDeletes creates an empty registry.
func NewPendingDeletes(ttl time.Duration) *PendingDeletes {
	if ttl <= 0 {
		ttl = DefaultConfirmTTL
	}
	return &PendingDeletes{
		entries: make(map[string]Pending),
		ttl:     ttl,
		now:     time.Now,
	}
}

func pendingKey(userID, id string) string { return userID + "/" + id }

// Request records (or replaces) a pending delete and returns it.
func (p *PendingDeletes) Request(userID, id string) Pending {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := Pending{
		ID:        id,
		Token:     uuid.NewString(),
		ExpiresAt: p.now().Add(p.ttl),
	}
	p.entries[pendingKey(userID, id)] = pending
	return pending
}

// Take removes the pending delete and reports whether it matched token
// and was still valid. A mismatched token leaves the entry in place.
func (p *PendingDeletes) Take(userID, id, token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pendingKey(userID, id)
	pending, ok := p.entries[key]
	if !ok || pending.Token != token {
		return false
	}
	delete(p.entries, key)
	return p.now().Before(pending.ExpiresAt)
}

// Cancel drops a pending delete. Unknown entries are ignored.
func (p *PendingDeletes) Cancel(userID, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.entries, pendingKey(userID, id))
}

// Sweep removes expired entries and returns how many were dropped.
func (p *PendingDeletes) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	removed := 0
	for key, pending := range p.entries {
		if !now.Before(pending.ExpiresAt) {
			delete(p.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of pending deletes.
func (p *PendingDeletes) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.entries)
}
