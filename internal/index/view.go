package index

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
)

// SyncView is the live in-memory mirror of one user's bookmarks.
//
// It is the only writer of its collection. Readers always get copies, so
// nothing outside can break ordering or the one-entry-per-ID invariant.
// Storage order is meaningless; use Project for display order.
type SyncView struct {
	mu         sync.RWMutex
	items      []domain.Bookmark
	lastChange time.Time
	changes    chan struct{}
	now        func() time.Time
}

// NewSyncView creates an empty view
func NewSyncView() *SyncView {
	return &SyncView{
		items:   make([]domain.Bookmark, 0),
		changes: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Initialize replaces the whole collection with snapshot.
// Repeated IDs in the snapshot keep their first occurrence.
func (v *SyncView) Initialize(snapshot []domain.Bookmark) {
	items := make([]domain.Bookmark, 0, len(snapshot))
	seen := make(map[string]bool, len(snapshot))
	for _, b := range snapshot {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		items = append(items, b)
	}

	v.mu.Lock()
	v.items = items
	v.lastChange = v.now()
	v.mu.Unlock()

	v.signal()
}

// OnCreated puts b at the front of the collection. A bookmark whose ID
// is already present is ignored (first seen wins); the return value
// reports whether the collection changed.
func (v *SyncView) OnCreated(b domain.Bookmark) bool {
	v.mu.Lock()
	for _, existing := range v.items {
		if existing.ID == b.ID {
			v.mu.Unlock()
			return false
		}
	}
	items := make([]domain.Bookmark, 0, len(v.items)+1)
	items = append(items, b)
	items = append(items, v.items...)
	v.items = items
	v.lastChange = v.now()
	v.mu.Unlock()

	v.signal()
	return true
}

// OnRemoved drops every entry with the given ID. Unknown IDs are a no-op.
func (v *SyncView) OnRemoved(id string) bool {
	v.mu.Lock()
	kept := make([]domain.Bookmark, 0, len(v.items))
	for _, b := range v.items {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	removed := len(kept) != len(v.items)
	if removed {
		v.items = kept
		v.lastChange = v.now()
	}
	v.mu.Unlock()

	if removed {
		v.signal()
	}
	return removed
}

// Apply routes a change event. UPDATE events are ignored: bookmarks are
// immutable once created.
func (v *SyncView) Apply(ev gateway.Event) bool {
	switch ev.Kind {
	case gateway.Created:
		if ev.New == nil {
			return false
		}
		return v.OnCreated(*ev.New)
	case gateway.Deleted:
		if ev.Old == nil {
			return false
		}
		return v.OnRemoved(ev.Old.ID)
	default:
		return false
	}
}

// Follow applies events from sub until ctx ends or the stream ends.
// It returns the stream's error: nil after Unsubscribe or cancellation,
// domain.ErrChannelInterrupted after a drop. The view keeps serving its
// last known state either way.
func (v *SyncView) Follow(ctx context.Context, sub *gateway.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			err := sub.Err()
			if err != nil {
				v.drain(sub)
			}
			return err
		case ev := <-sub.Events():
			v.Apply(ev)
		}
	}
}

// drain applies events still buffered when the stream was interrupted.
func (v *SyncView) drain(sub *gateway.Subscription) {
	for {
		select {
		case ev := <-sub.Events():
			v.Apply(ev)
		default:
			return
		}
	}
}

// Snapshot returns a copy of the collection
func (v *SyncView) Snapshot() []domain.Bookmark {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]domain.Bookmark, len(v.items))
	copy(out, v.items)
	return out
}

// Project returns the display list for q
func (v *SyncView) Project(q domain.Query) []domain.Bookmark {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return domain.Project(v.items, q)
}

// Len returns the number of bookmarks held
func (v *SyncView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.items)
}

// LastChange returns when the collection last changed
func (v *SyncView) LastChange() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.lastChange
}

// Changes fires after the collection changes. Signals coalesce: a single
// pending signal stands for any number of changes.
func (v *SyncView) Changes() <-chan struct{} { return v.changes }

func (v *SyncView) signal() {
	select {
	case v.changes <- struct{}{}:
	default:
	}
}
