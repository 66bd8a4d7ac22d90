// Package session ties a backend client, a synchronized view and its
// change subscription to one scoped lifetime.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/index"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// Options tune a session.
type Options struct {
	SnapshotLimit int // 0 = whole collection
	Pending       *bookmarks.PendingDeletes
	Logger        logger.Logger
}

// Session is one live view of a user's bookmarks.
type Session struct {
	userID   string
	client   gateway.Client
	view     *index.SyncView
	commands *bookmarks.Commands
	logger   logger.Logger

	sub      *gateway.Subscription
	cancel   context.CancelFunc
	done     chan struct{}
	degraded atomic.Bool
	once     sync.Once
}

// Open subscribes to the user's change channel, seeds the view from a
// snapshot and starts following events.
//
// The subscription is opened before the snapshot is taken, so a change
// racing the snapshot shows up at least once; the view drops the
// duplicate. A failed subscription is not fatal: the session starts
// degraded and serves the snapshot.
func Open(ctx context.Context, client gateway.Client, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	userID, ok := client.CurrentUser(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	log = log.With(logger.String("user", userID))

	s := &Session{
		userID:   userID,
		client:   client,
		view:     index.NewSyncView(),
		commands: bookmarks.NewCommands(client, opts.Pending, log),
		logger:   log,
		done:     make(chan struct{}),
	}

	sub, err := client.Subscribe(ctx, domain.TableBookmarks, gateway.AllKinds...)
	if err != nil {
		log.Warn("change channel unavailable, serving snapshot only", logger.Error(err))
		s.degraded.Store(true)
	}

	snapshot, err := client.ListBookmarks(ctx, userID, gateway.ListOptions{Limit: opts.SnapshotLimit})
	if err != nil {
		if sub != nil {
			sub.Unsubscribe()
		}
		return nil, domain.NewGatewayError("list", err)
	}
	s.view.Initialize(snapshot)

	followCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.sub = sub

	if sub == nil {
		close(s.done)
		return s, nil
	}

	go s.follow(followCtx)

	log.Debug("session opened",
		logger.Int("bookmarks", s.view.Len()))
	return s, nil
}

func (s *Session) follow(ctx context.Context) {
	defer close(s.done)

	err := s.view.Follow(ctx, s.sub)
	if err != nil {
		s.degraded.Store(true)
		if errors.Is(err, domain.ErrChannelInterrupted) {
			s.logger.Warn("change channel interrupted, view is now stale", logger.Error(err))
		} else {
			s.logger.Warn("change channel ended", logger.Error(err))
		}
	}
}

// Refresh replaces the view with a fresh snapshot, e.g. after navigation.
func (s *Session) Refresh(ctx context.Context, limit int) error {
	snapshot, err := s.client.ListBookmarks(ctx, s.userID, gateway.ListOptions{Limit: limit})
	if err != nil {
		return domain.NewGatewayError("list", err)
	}
	s.view.Initialize(snapshot)
	return nil
}

// UserID returns the session user.
func (s *Session) UserID() string { return s.userID }

// View returns the synchronized view.
func (s *Session) View() *index.SyncView { return s.view }

// Commands returns the session's mutation commands.
func (s *Session) Commands() *bookmarks.Commands { return s.commands }

// Degraded reports that the view no longer receives changes.
func (s *Session) Degraded() bool { return s.degraded.Load() }

// Done is closed once the session stops following changes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close releases the subscription and waits for the follower to stop.
// Safe to call more than once. In-flight commands may still finish; the
// view simply no longer hears about them.
func (s *Session) Close() {
	s.once.Do(func() {
		if s.sub != nil {
			s.sub.Unsubscribe()
		}
		s.cancel()
		<-s.done
		s.logger.Debug("session closed")
	})
}
