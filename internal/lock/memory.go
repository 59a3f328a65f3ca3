package lock

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/matchmaker/internal/dependencies/clock"
)

// InMemory implements Locker for a single process.
// Expiry is evaluated lazily against the injected clock.
type InMemory struct {
	mu      sync.Mutex
	clock   clock.Clock
	expires map[string]time.Time
}

// Ensure InMemory implements the interface
var _ Locker = (*InMemory)(nil)

// NewInMemory returns an empty in-memory locker
func NewInMemory(clk clock.Clock) *InMemory {
	return &InMemory{
		clock:   clk,
		expires: make(map[string]time.Time),
	}
}

// TryLock obtains key if it is free or its previous holder's TTL has lapsed
func (l *InMemory) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if exp, ok := l.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	l.expires[key] = now.Add(ttl)
	return true, nil
}

// Release frees the key
func (l *InMemory) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expires, key)
	return nil
}

// Held reports whether key is currently locked
func (l *InMemory) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.expires[key]
	return ok && l.clock.Now().Before(exp)
}
