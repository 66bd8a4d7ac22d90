package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartbookmark/internal/domain"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// Subscribe opens the session user's change channel. The SUBSCRIBE is
// confirmed before returning, so no event published afterwards is lost.
func (s *Session) Subscribe(ctx context.Context, table string, kinds ...gateway.EventKind) (*gateway.Subscription, error) {
	if table != domain.TableBookmarks {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	if s.userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	channel := EventsChannel(s.userID)
	ps := s.store.client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := gateway.NewSubscription(s.store.buffer, kinds, func() {
		if err := ps.Close(); err != nil {
			s.store.logger.Debug("pubsub close", logger.Error(err))
		}
	})
	go s.store.pump(ps.Channel(), sub, channel)

	s.store.logger.Debug("subscribed to change channel",
		logger.String("channel", channel))
	return sub, nil
}

// pump decodes Pub/Sub messages into the subscription until either side ends.
func (s *Store) pump(messages <-chan *redis.Message, sub *gateway.Subscription, channel string) {
	for {
		select {
		case <-sub.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				select {
				case <-sub.Done():
					return
				default:
				}
				s.logger.Warn("change channel closed",
					logger.String("channel", channel))
				sub.Interrupt(domain.ErrChannelInterrupted)
				return
			}

			var ev gateway.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Warn("dropping malformed change event",
					logger.String("channel", channel),
					logger.Error(err))
				continue
			}
			if !sub.Publish(ev) {
				return
			}
		}
	}
}
