package gateway

import (
	"sync"
)

// Subscription is a cancellable stream of change events.
//
// The events channel is never closed; consumers select on Done to learn
// that the stream ended, then check Err: nil after Unsubscribe,
// domain.ErrChannelInterrupted (or a wrapped cause) after a drop.
type Subscription struct {
	events  chan Event
	done    chan struct{}
	kinds   map[EventKind]bool
	release func()

	once sync.Once
	mu   sync.Mutex
	err  error
}

// NewSubscription creates the consumer handle. release frees the
// underlying connection and runs once, on Unsubscribe.
func NewSubscription(buffer int, kinds []EventKind, release func()) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	want := make(map[EventKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	return &Subscription{
		events:  make(chan Event, buffer),
		done:    make(chan struct{}),
		kinds:   want,
		release: release,
	}
}

// Events delivers the subscribed change events.
func (s *Subscription) Events() <-chan Event { return s.events }

// Done is closed when the stream ends for any reason.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err reports why the stream ended.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wants reports whether kind was requested.
func (s *Subscription) Wants(kind EventKind) bool { return s.kinds[kind] }

// Unsubscribe ends the stream and releases the connection. Safe to call
// more than once and from any goroutine.
func (s *Subscription) Unsubscribe() {
	s.finish(nil)
}

// Publish hands ev to the consumer, blocking while the buffer is full.
// Unwanted kinds are dropped. It returns false once the stream ended.
func (s *Subscription) Publish(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	if !s.Wants(ev.Kind) {
		return true
	}
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// Interrupt ends the stream on behalf of the producer.
func (s *Subscription) Interrupt(err error) {
	s.finish(err)
}

func (s *Subscription) finish(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
		if s.release != nil {
			s.release()
		}
	})
}
