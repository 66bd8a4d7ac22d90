package gateway

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
)

func TestSubscriptionFiltersKinds(t *testing.T) {
	sub := NewSubscription(4, []EventKind{Created}, nil)
	require.True(t, sub.Wants(Created))
	require.False(t, sub.Wants(Deleted))

	require.True(t, sub.Publish(Event{Kind: Deleted}))
	require.True(t, sub.Publish(Event{Kind: Created, ID: "e1"}))

	select {
	case ev := <-sub.Events():
		require.Equal(t, "e1", ev.ID)
	default:
		t.Fatal("expected a created event")
	}
	require.Empty(t, sub.Events())
}

func TestSubscriptionUnsubscribeReleasesOnce(t *testing.T) {
	released := 0
	sub := NewSubscription(1, nil, func() { released++ })

	sub.Unsubscribe()
	sub.Unsubscribe()
	sub.Interrupt(domain.ErrChannelInterrupted)

	require.Equal(t, 1, released)
	require.NoError(t, sub.Err())
	require.False(t, sub.Publish(Event{Kind: Created}))

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed after Unsubscribe")
	}
}

func TestSubscriptionPublishUnblocksOnUnsubscribe(t *testing.T) {
	sub := NewSubscription(1, nil, nil)
	require.True(t, sub.Publish(Event{Kind: Created}))

	result := make(chan bool, 1)
	go func() { result <- sub.Publish(Event{Kind: Created}) }()

	time.Sleep(10 * time.Millisecond)
	sub.Unsubscribe()

	select {
	case ok := <-result:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Publish still blocked after Unsubscribe")
	}
}

func TestSubscriptionInterrupt(t *testing.T) {
	sub := NewSubscription(1, nil, nil)
	sub.Interrupt(domain.ErrChannelInterrupted)

	<-sub.Done()
	require.True(t, errors.Is(sub.Err(), domain.ErrChannelInterrupted))
}
