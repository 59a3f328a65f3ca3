package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying client so the lock can share the connection pool
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Queue operations

func (s *Storage) QueueLength(ctx context.Context, mode model.Mode) (int64, error) {
	return s.client.LLen(ctx, queueKey(mode)).Result()
}

func (s *Storage) PopQueue(ctx context.Context, mode model.Mode) (string, bool, error) {
	entry, err := s.client.RPop(ctx, queueKey(mode)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry, true, nil
}

func (s *Storage) PushQueue(ctx context.Context, mode model.Mode, entries ...string) error {
	if len(entries) == 0 {
		return nil
	}
	values := make([]interface{}, len(entries))
	for i, e := range entries {
		values[i] = e
	}
	return s.client.LPush(ctx, queueKey(mode), values...).Err()
}

// Counter operations

func (s *Storage) NextGuestSessionID(ctx context.Context) (model.SessionID, error) {
	n, err := s.client.Incr(ctx, guestCounterKey).Result()
	if err != nil {
		return 0, err
	}
	return model.SessionID(n), nil
}

// Session state operations

func (s *Storage) SaveSessionState(ctx context.Context, state *model.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	// Apply TTL only for guest sessions
	var ttl time.Duration
	if state.FirstID.Mode() == model.ModeGuest {
		ttl = s.cfg.GuestSessionTTL
	}

	return s.client.Set(ctx, sessionKey(state.SessionID), data, ttl).Err()
}

func (s *Storage) GetSessionState(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var state model.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
