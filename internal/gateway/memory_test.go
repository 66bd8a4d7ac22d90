package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestMemoryInsertListCount(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(8)
	clock := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	b.SetClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	alice := b.Session("alice")
	bob := b.Session("bob")

	first, err := alice.InsertBookmark(ctx, domain.NewBookmark{URL: "https://go.dev", Title: "Go", UserID: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	second, err := alice.InsertBookmark(ctx, domain.NewBookmark{URL: "https://pkg.go.dev", Title: "pkg", UserID: "alice"})
	require.NoError(t, err)
	_, err = bob.InsertBookmark(ctx, domain.NewBookmark{URL: "https://bob.example", UserID: "bob"})
	require.NoError(t, err)

	rows, err := alice.ListBookmarks(ctx, "alice", ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, second.ID, rows[0].ID, "newest first")
	require.Equal(t, first.ID, rows[1].ID)

	limited, err := alice.ListBookmarks(ctx, "alice", ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	foreign, err := alice.ListBookmarks(ctx, "bob", ListOptions{})
	require.NoError(t, err)
	require.Empty(t, foreign)

	total, err := alice.CountBookmarks(ctx, "alice", CountFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	recent, err := alice.CountBookmarks(ctx, "alice", CountFilter{Since: second.CreatedAt})
	require.NoError(t, err)
	require.Equal(t, 1, recent)
}

func TestMemoryRowLevelPolicy(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(8)

	_, err := b.Session("alice").InsertBookmark(ctx, domain.NewBookmark{URL: "https://x", UserID: "bob"})
	require.Error(t, err)

	row, err := b.Session("bob").InsertBookmark(ctx, domain.NewBookmark{URL: "https://x", UserID: "bob"})
	require.NoError(t, err)

	require.NoError(t, b.Session("alice").DeleteBookmark(ctx, row.ID))
	n, err := b.Session("bob").CountBookmarks(ctx, "bob", CountFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, n, "foreign delete must not remove the row")

	_, err = b.Session("").InsertBookmark(ctx, domain.NewBookmark{URL: "https://x"})
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestMemorySubscribeDeliversOwnEvents(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(8)
	alice := b.Session("alice")

	sub, err := alice.Subscribe(ctx, domain.TableBookmarks, AllKinds...)
	require.NoError(t, err)
	require.Equal(t, 1, b.Subscribers("alice"))

	_, err = b.Session("bob").InsertBookmark(ctx, domain.NewBookmark{URL: "https://bob", UserID: "bob"})
	require.NoError(t, err)

	row, err := alice.InsertBookmark(ctx, domain.NewBookmark{URL: "https://a", UserID: "alice"})
	require.NoError(t, err)
	ev := receive(t, sub)
	require.Equal(t, Created, ev.Kind)
	require.Equal(t, row.ID, ev.New.ID)
	require.NotEmpty(t, ev.ID)

	require.NoError(t, alice.DeleteBookmark(ctx, row.ID))
	ev = receive(t, sub)
	require.Equal(t, Deleted, ev.Kind)
	require.Equal(t, row.ID, ev.Old.ID)

	sub.Unsubscribe()
	require.Equal(t, 0, b.Subscribers("alice"))
}

func TestMemoryInterrupt(t *testing.T) {
	b := NewMemoryBackend(1)
	sub, err := b.Session("alice").Subscribe(context.Background(), domain.TableBookmarks)
	require.NoError(t, err)

	b.Interrupt()

	<-sub.Done()
	require.ErrorIs(t, sub.Err(), domain.ErrChannelInterrupted)
	require.Equal(t, 0, b.Subscribers("alice"))
}

func TestMemorySubscribeRequiresSession(t *testing.T) {
	_, err := NewMemoryBackend(1).Session("").Subscribe(context.Background(), domain.TableBookmarks)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = NewMemoryBackend(1).Session("alice").Subscribe(context.Background(), "profiles")
	require.Error(t, err)
}
