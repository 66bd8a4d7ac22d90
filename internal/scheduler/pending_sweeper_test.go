package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

func TestPendingSweeper_Sweep(t *testing.T) {
	pending := bookmarks.NewPendingDeletes(time.Millisecond)
	pending.Request("alice", "b1")
	pending.Request("bob", "b2")

	time.Sleep(5 * time.Millisecond)

	s := NewPendingSweeper(pending, logger.Nop(), time.Hour)
	if got := s.Sweep(); got != 2 {
		t.Fatalf("expected 2 removed, got %d", got)
	}
	if pending.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", pending.Len())
	}
	if got := s.Sweep(); got != 0 {
		t.Fatalf("expected nothing left to sweep, got %d", got)
	}
}

func TestPendingSweeper_KeepsLiveRequests(t *testing.T) {
	pending := bookmarks.NewPendingDeletes(time.Hour)
	pending.Request("alice", "b1")

	s := NewPendingSweeper(pending, logger.Nop(), time.Hour)
	if got := s.Sweep(); got != 0 {
		t.Fatalf("expected 0 removed, got %d", got)
	}
	if pending.Len() != 1 {
		t.Fatalf("expected live request kept, got %d", pending.Len())
	}
}

func TestPendingSweeper_StartStop(t *testing.T) {
	pending := bookmarks.NewPendingDeletes(time.Millisecond)
	pending.Request("alice", "b1")

	s := NewPendingSweeper(pending, logger.Nop(), 2*time.Millisecond)
	s.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for pending.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper never dropped the expired request")
		}
		time.Sleep(2 * time.Millisecond)
	}

	s.Stop()
	s.Stop()
}

func TestPendingSweeper_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewPendingSweeper(bookmarks.NewPendingDeletes(time.Minute), logger.Nop(), time.Hour)
	s.Start(ctx)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not exit after context cancel")
	}
}

func TestNewPendingSweeper_DefaultInterval(t *testing.T) {
	s := NewPendingSweeper(bookmarks.NewPendingDeletes(0), logger.Nop(), 0)
	if s.interval != DefaultSweepInterval {
		t.Fatalf("expected default interval, got %v", s.interval)
	}
}

func TestPendingSweeper_StopWithoutStart(t *testing.T) {
	s := NewPendingSweeper(bookmarks.NewPendingDeletes(time.Minute), logger.Nop(), time.Hour)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a sweeper that never started")
	}

	// A stopped sweeper must not start a loop afterwards.
	s.Start(context.Background())
}
