package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis implements Locker using SET NX PX on a Redis backend
type Redis struct {
	client redis.Cmdable
}

// Ensure Redis implements the interface
var _ Locker = (*Redis)(nil)

// NewRedis returns a new Redis locker using the provided client
func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

// TryLock attempts to obtain the lock without waiting.
// The stored value is a random token identifying the acquisition.
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, uuid.NewString(), ttl).Result()
}

// Release deletes the key regardless of who set it
func (r *Redis) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
