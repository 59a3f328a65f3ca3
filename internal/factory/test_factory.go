package factory

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/matchmaker/internal/dependencies/mocks"
	"github.com/mcoot/matchmaker/internal/lock"
	"github.com/mcoot/matchmaker/internal/services/matchmaker"
	"github.com/mcoot/matchmaker/internal/storage"
	"github.com/mcoot/matchmaker/internal/storage/memory"
	redisstorage "github.com/mcoot/matchmaker/internal/storage/redis"
	"github.com/mcoot/matchmaker/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return newTestApp(store, store, lock.NewInMemory(mockClock), mockClock)
}

// NewRedisTestApp wires an App against the given client, typically pointed at miniredis.
// Session records are kept in the same Redis.
func NewRedisTestApp(client *redis.Client) *TestApp {
	store := redisstorage.NewWithClient(client, redisstorage.DefaultConfig())
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return newTestApp(store, store, lock.NewRedis(client), mockClock)
}

func newTestApp(store storage.Storage, records storage.RecordStore, locker lock.Locker, mockClock *mocks.MockClock) *TestApp {
	mockRandom := mocks.NewMockRandom()
	app := newWithDependencies(store, records, locker, mockClock, mockRandom, matchmaker.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
