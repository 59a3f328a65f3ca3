package lock

import (
	"context"
	"time"
)

// Locker is a distributed, time-bounded mutex keyed by name
type Locker interface {
	// TryLock sets key only if absent, expiring after ttl.
	// It reports whether the caller obtained the lock and never waits.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release clears key unconditionally. Releasing an absent key is a no-op.
	Release(ctx context.Context, key string) error
}
