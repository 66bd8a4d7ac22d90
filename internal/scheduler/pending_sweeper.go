package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = time.Minute

// PendingSweeper periodically drops delete requests nobody confirmed.
type PendingSweeper struct {
	pending  *bookmarks.PendingDeletes
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

// NewPendingSweeper creates a sweeper for pending.
func NewPendingSweeper(pending *bookmarks.PendingDeletes, log logger.Logger, interval time.Duration) *PendingSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &PendingSweeper{
		pending:  pending,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop in the background until Stop or ctx is done.
func (s *PendingSweeper) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for it to exit. Safe to call more than
// once, and before Start.
func (s *PendingSweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started.CompareAndSwap(false, true) {
			close(s.done)
		}
	})
	<-s.done
}

// Sweep drops expired requests once and returns how many went away.
func (s *PendingSweeper) Sweep() int {
	removed := s.pending.Sweep()
	if removed > 0 {
		s.logger.Info("expired delete requests dropped",
			logger.Int("removed", removed),
			logger.Int("remaining", s.pending.Len()))
	} else {
		s.logger.Debug("no expired delete requests")
	}
	return removed
}
