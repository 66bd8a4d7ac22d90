package bookmarks

import (
	"testing"
	"time"
)

func TestPendingDeletesExpiry(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	p := NewPendingDeletes(10 * time.Second)
	p.now = func() time.Time { return now }

	first := p.Request("alice", "b1")
	p.Request("alice", "b2")

	now = now.Add(11 * time.Second)
	if p.Take("alice", "b1", first.Token) {
		t.Error("Take() accepted an expired confirmation")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after taking b1", p.Len())
	}

	if removed := p.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
}

func TestPendingDeletesRequestReplacesToken(t *testing.T) {
	p := NewPendingDeletes(time.Minute)
	old := p.Request("alice", "b1")
	fresh := p.Request("alice", "b1")

	if p.Take("alice", "b1", old.Token) {
		t.Error("Take() accepted a superseded token")
	}
	if !p.Take("alice", "b1", fresh.Token) {
		t.Error("Take() rejected the current token")
	}
}
