package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewStore(client, logger.New("error", false), 8)
	clock := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store, mr
}

func nextEvent(t *testing.T, sub *gateway.Subscription) gateway.Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
		return gateway.Event{}
	}
}

func TestStoreInsertListCountDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	alice := store.Session("alice")

	first, err := alice.InsertBookmark(ctx, domain.NewBookmark{URL: "https://go.dev", Title: "Go Docs", UserID: "alice"})
	require.NoError(t, err)
	second, err := alice.InsertBookmark(ctx, domain.NewBookmark{URL: "https://rust-lang.org", Title: "https://rust-lang.org", UserID: "alice"})
	require.NoError(t, err)

	rows, err := alice.ListBookmarks(ctx, "alice", gateway.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, second.ID, rows[0].ID)
	require.Equal(t, first.ID, rows[1].ID)
	require.Equal(t, "Go Docs", rows[1].Title)

	top, err := alice.ListBookmarks(ctx, "alice", gateway.ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, second.ID, top[0].ID)

	n, err := alice.CountBookmarks(ctx, "alice", gateway.CountFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = alice.CountBookmarks(ctx, "alice", gateway.CountFilter{Since: second.CreatedAt})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, alice.DeleteBookmark(ctx, first.ID))
	rows, err = alice.ListBookmarks(ctx, "alice", gateway.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, alice.DeleteBookmark(ctx, "missing"))
}

func TestStoreRowLevelPolicy(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	row, err := store.Session("bob").InsertBookmark(ctx, domain.NewBookmark{URL: "https://bob.example", UserID: "bob"})
	require.NoError(t, err)

	alice := store.Session("alice")
	_, err = alice.InsertBookmark(ctx, domain.NewBookmark{URL: "https://x", UserID: "bob"})
	require.Error(t, err)

	rows, err := alice.ListBookmarks(ctx, "bob", gateway.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, rows)

	require.NoError(t, alice.DeleteBookmark(ctx, row.ID))
	n, err := store.Session("bob").CountBookmarks(ctx, "bob", gateway.CountFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	anon := store.Session("")
	_, ok := anon.CurrentUser(ctx)
	require.False(t, ok)
	_, err = anon.InsertBookmark(ctx, domain.NewBookmark{URL: "https://x"})
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
	_, err = anon.Subscribe(ctx, domain.TableBookmarks)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestStoreSubscribeReceivesChanges(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	alice := store.Session("alice")

	sub, err := alice.Subscribe(ctx, domain.TableBookmarks, gateway.AllKinds...)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	_, err = store.Session("bob").InsertBookmark(ctx, domain.NewBookmark{URL: "https://bob", UserID: "bob"})
	require.NoError(t, err)

	row, err := alice.InsertBookmark(ctx, domain.NewBookmark{URL: "https://go.dev", UserID: "alice"})
	require.NoError(t, err)

	ev := nextEvent(t, sub)
	require.Equal(t, gateway.Created, ev.Kind)
	require.Equal(t, domain.TableBookmarks, ev.Table)
	require.Equal(t, row.ID, ev.New.ID)
	require.Equal(t, "alice", ev.New.UserID)

	require.NoError(t, alice.DeleteBookmark(ctx, row.ID))
	ev = nextEvent(t, sub)
	require.Equal(t, gateway.Deleted, ev.Kind)
	require.Equal(t, row.ID, ev.Old.ID)
}

func TestStoreUnsubscribeEndsStream(t *testing.T) {
	store, _ := newTestStore(t)
	sub, err := store.Session("alice").Subscribe(context.Background(), domain.TableBookmarks)
	require.NoError(t, err)

	sub.Unsubscribe()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed")
	}
	require.NoError(t, sub.Err())
}

func TestStoreSubscribeUnknownTable(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Session("alice").Subscribe(context.Background(), "profiles")
	require.Error(t, err)
}

func TestStorePing(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	require.Error(t, store.Ping(context.Background()))
}
