package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// DefaultSubscriptionBuffer is used when no buffer size is configured
const DefaultSubscriptionBuffer = 64

// Store is the Redis-backed bookmark backend.
// Rows are JSON strings, each user has a ZSET index and a Pub/Sub channel.
type Store struct {
	client *redis.Client
	logger logger.Logger
	buffer int
	now    func() time.Time
	newID  func() string
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, log logger.Logger, buffer int) *Store {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}
	return &Store{
		client: client,
		logger: log,
		buffer: buffer,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Kind identifies the backend in diagnostics
func (s *Store) Kind() string { return "redis" }

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Session returns a client bound to userID ("" = unauthenticated)
func (s *Store) Session(userID string) gateway.Client {
	return &Session{store: s, userID: userID}
}

// Session is a session-scoped handle on the store
type Session struct {
	store  *Store
	userID string
}

// CurrentUser returns the user bound to this session
func (s *Session) CurrentUser(context.Context) (string, bool) {
	return s.userID, s.userID != ""
}

var _ gateway.Backend = (*Store)(nil)
var _ gateway.Client = (*Session)(nil)
