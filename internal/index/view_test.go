package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
)

func bm(id string, sec int64) domain.Bookmark {
	return domain.Bookmark{ID: id, URL: "https://" + id + ".example", CreatedAt: time.Unix(sec, 0)}
}

func idsOf(items []domain.Bookmark) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewSyncView(t *testing.T) {
	v := NewSyncView()
	if v == nil {
		t.Fatal("NewSyncView() returned nil")
	}
	if v.Len() != 0 {
		t.Errorf("NewSyncView() should start empty, got %d", v.Len())
	}
}

func TestInitializeReplaces(t *testing.T) {
	v := NewSyncView()
	v.Initialize([]domain.Bookmark{bm("1", 1)})
	v.Initialize([]domain.Bookmark{bm("2", 2), bm("3", 3), bm("2", 4)})

	got := idsOf(v.Snapshot())
	if !sameIDs(got, []string{"2", "3"}) {
		t.Errorf("Initialize() should fully replace and dedupe, got %v", got)
	}
}

func TestOnCreatedPrepends(t *testing.T) {
	v := NewSyncView()
	v.Initialize(nil)

	if !v.OnCreated(bm("5", 5)) {
		t.Fatal("OnCreated() = false on empty view")
	}
	v.OnCreated(bm("6", 6))

	got := idsOf(v.Snapshot())
	if !sameIDs(got, []string{"6", "5"}) {
		t.Errorf("Snapshot() = %v, want [6 5]", got)
	}

	projected := v.Project(domain.DefaultQuery())
	if len(projected) != 2 || projected[0].ID != "6" {
		t.Errorf("Project(default) = %v, want newest first", idsOf(projected))
	}
}

func TestOnCreatedKeepsFirstSeen(t *testing.T) {
	v := NewSyncView()
	v.Initialize([]domain.Bookmark{{ID: "1", Title: "original"}})

	if v.OnCreated(domain.Bookmark{ID: "1", Title: "duplicate"}) {
		t.Error("OnCreated() applied a duplicate ID")
	}
	snap := v.Snapshot()
	if len(snap) != 1 || snap[0].Title != "original" {
		t.Errorf("Snapshot() = %+v, want the first-seen row only", snap)
	}
}

func TestCreateThenRemoveRestoresState(t *testing.T) {
	v := NewSyncView()
	v.Initialize([]domain.Bookmark{bm("1", 1), bm("2", 2)})
	before := idsOf(v.Snapshot())

	v.OnCreated(bm("9", 9))
	v.OnRemoved("9")

	if got := idsOf(v.Snapshot()); !sameIDs(got, before) {
		t.Errorf("after create+remove got %v, want %v", got, before)
	}
}

func TestOnRemovedUnknownIsNoop(t *testing.T) {
	v := NewSyncView()
	v.Initialize([]domain.Bookmark{bm("1", 1)})
	changed := v.LastChange()

	if v.OnRemoved("404") {
		t.Error("OnRemoved() reported a removal for an unknown id")
	}
	if v.Len() != 1 {
		t.Errorf("Len() = %d, want 1", v.Len())
	}
	if !v.LastChange().Equal(changed) {
		t.Error("LastChange() moved on a no-op removal")
	}
}

func TestRemoveBeforeCreate(t *testing.T) {
	v := NewSyncView()
	v.Initialize(nil)

	v.OnRemoved("7")
	v.OnCreated(bm("7", 7))

	if v.Len() != 1 {
		t.Errorf("Len() = %d, want 1", v.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	v := NewSyncView()
	v.Initialize([]domain.Bookmark{bm("1", 1)})

	snap := v.Snapshot()
	snap[0].ID = "mutated"

	if v.Snapshot()[0].ID != "1" {
		t.Error("mutating a snapshot changed the view")
	}
}

func TestApply(t *testing.T) {
	v := NewSyncView()
	v.Initialize(nil)
	row := bm("1", 1)

	tests := []struct {
		name    string
		event   gateway.Event
		want    bool
		wantLen int
	}{
		{name: "insert", event: gateway.Event{Kind: gateway.Created, New: &row}, want: true, wantLen: 1},
		{name: "update ignored", event: gateway.Event{Kind: gateway.Updated, New: &row}, want: false, wantLen: 1},
		{name: "insert without row", event: gateway.Event{Kind: gateway.Created}, want: false, wantLen: 1},
		{name: "delete", event: gateway.Event{Kind: gateway.Deleted, Old: &domain.Bookmark{ID: "1"}}, want: true, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Apply(tt.event); got != tt.want {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
			if v.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", v.Len(), tt.wantLen)
			}
		})
	}
}

func TestChangesCoalesce(t *testing.T) {
	v := NewSyncView()
	v.OnCreated(bm("1", 1))
	v.OnCreated(bm("2", 2))

	select {
	case <-v.Changes():
	default:
		t.Fatal("expected a change signal")
	}
	select {
	case <-v.Changes():
		t.Fatal("signals should coalesce")
	default:
	}
}

func TestFollow(t *testing.T) {
	v := NewSyncView()
	sub := gateway.NewSubscription(4, nil, nil)

	done := make(chan error, 1)
	go func() { done <- v.Follow(context.Background(), sub) }()

	row := bm("1", 1)
	sub.Publish(gateway.Event{Kind: gateway.Created, New: &row})
	deadline := time.Now().Add(time.Second)
	for v.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if v.Len() != 1 {
		t.Fatal("Follow() did not apply the event")
	}

	sub.Interrupt(domain.ErrChannelInterrupted)
	select {
	case err := <-done:
		if !errors.Is(err, domain.ErrChannelInterrupted) {
			t.Errorf("Follow() = %v, want ErrChannelInterrupted", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Follow() did not return")
	}
	if v.Len() != 1 {
		t.Error("view lost its state after the channel dropped")
	}
}

func TestFollowAppliesBufferedEventsAfterInterrupt(t *testing.T) {
	v := NewSyncView()
	sub := gateway.NewSubscription(4, nil, nil)

	for _, id := range []string{"1", "2", "3"} {
		row := bm(id, 1)
		sub.Publish(gateway.Event{Kind: gateway.Created, New: &row})
	}
	sub.Interrupt(domain.ErrChannelInterrupted)

	err := v.Follow(context.Background(), sub)
	if !errors.Is(err, domain.ErrChannelInterrupted) {
		t.Fatalf("Follow() = %v, want ErrChannelInterrupted", err)
	}
	if v.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (buffered events must survive the drop)", v.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	v := NewSyncView()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			v.OnCreated(bm(id, int64(n)))
			v.OnRemoved(id)
		}(i)
		go func() {
			defer wg.Done()
			_ = v.Project(domain.DefaultQuery())
			_ = v.Snapshot()
		}()
	}
	wg.Wait()

	if v.Len() != 0 {
		t.Errorf("Len() = %d, want 0", v.Len())
	}
}
