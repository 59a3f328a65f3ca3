package factory

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/matchmaker/internal/config"
	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/services/matchmaker"
)

// conn records what the dispatcher delivers to one participant
type conn struct {
	mu       sync.Mutex
	messages []model.SessionStartMessage
}

func (c *conn) Send(message []byte) error {
	var msg model.SessionStartMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *conn) received() []model.SessionStartMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.SessionStartMessage(nil), c.messages...)
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) connect(id model.ParticipantID) *conn {
	c := &conn{}
	s.app.Hub.Register(id, c)
	return c
}

// Test: Two registered participants are paired, persisted and notified
func (s *IntegrationSuite) TestRegisteredPairingFlow() {
	// Step 1: Both participants connect and queue up
	five := s.connect(model.Registered(5))
	seven := s.connect(model.Registered(7))
	s.Require().NoError(s.app.Queue.Push(s.ctx, model.ModeRegistered, "5", "7"))

	// Step 2: The coin favours the first popped participant
	s.app.MockRandom.QueueFloat64(0.75)
	s.Equal(matchmaker.OutcomePaired, s.app.Matchmaker.AttemptPairing(s.ctx, model.ModeRegistered))

	// Step 3: Record and state agree
	rec, err := s.app.Records.GetSessionRecord(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(model.Registered(5), rec.FirstID)
	s.Equal(model.Registered(7), rec.SecondID)
	s.Equal(s.app.MockClock.Now().UnixMilli(), rec.CreatedAt.UnixMilli())

	state, err := s.app.Registry.GetState(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.FirstID, state.FirstID)

	// Step 4: Both received opposite roles for the same session
	s.Require().Len(five.received(), 1)
	s.Require().Len(seven.received(), 1)
	s.Equal(model.RoleFirst, five.received()[0].Role)
	s.Equal(model.RoleSecond, seven.received()[0].Role)
	s.Equal(rec.ID, seven.received()[0].SessionID)

	// Step 5: The queue is drained and the next pass has nothing to do
	s.Equal(matchmaker.OutcomeUnderflow, s.app.Matchmaker.AttemptPairing(s.ctx, model.ModeRegistered))
}

// Test: Queues are independent per mode
func (s *IntegrationSuite) TestModesDoNotMix() {
	s.Require().NoError(s.app.Queue.Push(s.ctx, model.ModeRegistered, "5"))
	s.Require().NoError(s.app.Queue.Push(s.ctx, model.ModeGuest, "uuid-a"))

	s.Equal(matchmaker.OutcomeUnderflow, s.app.Matchmaker.AttemptPairing(s.ctx, model.ModeRegistered))
	s.Equal(matchmaker.OutcomeUnderflow, s.app.Matchmaker.AttemptPairing(s.ctx, model.ModeGuest))
}

type RedisIntegrationSuite struct {
	suite.Suite
	mini   *miniredis.Miniredis
	client *redis.Client
	app    *TestApp
	ctx    context.Context
}

func TestRedisIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RedisIntegrationSuite))
}

func (s *RedisIntegrationSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.app = NewRedisTestApp(s.client)
	s.ctx = context.Background()
}

func (s *RedisIntegrationSuite) TearDownTest() {
	_ = s.client.Close()
}

// Test: Guest pairing against a real protocol store
func (s *RedisIntegrationSuite) TestGuestPairingWritesSessionState() {
	a, b := &conn{}, &conn{}
	s.app.Hub.Register(model.Guest("uuid-a"), a)
	s.app.Hub.Register(model.Guest("uuid-b"), b)
	s.Require().NoError(s.app.Queue.Push(s.ctx, model.ModeGuest, "uuid-a", "uuid-b"))

	s.Equal(matchmaker.OutcomePaired, s.app.Matchmaker.AttemptPairing(s.ctx, model.ModeGuest))

	// Counter was incremented and the lock key is gone
	counter, err := s.mini.Get("guest_session_id")
	s.Require().NoError(err)
	s.Equal("1", counter)
	s.False(s.mini.Exists(matchmaker.DefaultLockKey))

	// State is JSON with string participant ids
	raw, err := s.mini.Get("session:1")
	s.Require().NoError(err)
	var doc map[string]any
	s.Require().NoError(json.Unmarshal([]byte(raw), &doc))
	s.IsType("", doc["firstParticipantId"])
	s.IsType("", doc["secondParticipantId"])
	s.Equal(model.StartingPosition, doc["board"])
	s.Equal("w", doc["turn"])

	s.Len(a.received(), 1)
	s.Len(b.received(), 1)
}

// Test: An existing lock key makes the pass a no-op
func (s *RedisIntegrationSuite) TestHeldLockSkipsPass() {
	s.Require().NoError(s.mini.Set(matchmaker.DefaultLockKey, "other-coordinator"))
	s.Require().NoError(s.app.Queue.Push(s.ctx, model.ModeGuest, "uuid-a", "uuid-b"))

	s.Equal(matchmaker.OutcomeContended, s.app.Matchmaker.AttemptPairing(s.ctx, model.ModeGuest))

	n, err := s.app.Queue.Length(s.ctx, model.ModeGuest)
	s.Require().NoError(err)
	s.Equal(int64(2), n)
	holder, _ := s.mini.Get(matchmaker.DefaultLockKey)
	s.Equal("other-coordinator", holder)
}

// Test: Coordinators sharing one store never pair the same entries twice
func (s *RedisIntegrationSuite) TestCompetingCoordinators() {
	const coordinators = 8
	apps := make([]*TestApp, coordinators)
	for i := range apps {
		apps[i] = NewRedisTestApp(s.client)
	}
	s.Require().NoError(s.app.Queue.Push(s.ctx, model.ModeGuest, "a", "b", "c", "d"))

	var wg sync.WaitGroup
	for _, app := range apps {
		wg.Add(1)
		go func(app *TestApp) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				app.Matchmaker.AttemptPairing(s.ctx, model.ModeGuest)
			}
		}(app)
	}
	wg.Wait()

	// Drain whatever contention left behind
	for s.app.Matchmaker.AttemptPairing(s.ctx, model.ModeGuest) == matchmaker.OutcomePaired {
	}

	counter, err := s.mini.Get("guest_session_id")
	s.Require().NoError(err)
	s.Equal("2", counter, "four entries make exactly two sessions")

	n, err := s.app.Queue.Length(s.ctx, model.ModeGuest)
	s.Require().NoError(err)
	s.Equal(int64(0), n)
}

func TestNewWiresConfiguredBackends(t *testing.T) {
	t.Run("memory with sqlite records", func(t *testing.T) {
		cfg := config.Config{
			StorageType: config.StorageTypeMemory,
			SQLitePath:  filepath.Join(t.TempDir(), "sessions.db"),
			LockTTL:     time.Second,
		}
		app, err := New(FromServerConfig(cfg, nil))
		require.NoError(t, err)
		t.Cleanup(func() { _ = app.Close() })

		ctx := context.Background()
		require.NoError(t, app.Queue.Push(ctx, model.ModeRegistered, "11", "12"))
		require.Equal(t, matchmaker.OutcomePaired, app.Matchmaker.AttemptPairing(ctx, model.ModeRegistered))

		rec, err := app.Records.GetSessionRecord(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, model.SessionStatusInProgress, rec.Status)
	})

	t.Run("redis", func(t *testing.T) {
		mini := miniredis.RunT(t)
		cfg := config.Config{
			StorageType: config.StorageTypeRedis,
			RedisURL:    "redis://" + mini.Addr(),
			LockTTL:     time.Second,
		}
		app, err := New(FromServerConfig(cfg, nil))
		require.NoError(t, err)
		t.Cleanup(func() { _ = app.Close() })

		ctx := context.Background()
		require.NoError(t, app.Queue.Push(ctx, model.ModeGuest, "x", "y"))
		require.Equal(t, matchmaker.OutcomePaired, app.Matchmaker.AttemptPairing(ctx, model.ModeGuest))
		require.True(t, mini.Exists("session:1"))
	})

	t.Run("redis records shared between coordinators", func(t *testing.T) {
		mini := miniredis.RunT(t)
		cfg := config.Config{
			StorageType: config.StorageTypeRedis,
			RedisURL:    "redis://" + mini.Addr(),
			LockTTL:     time.Second,
		}
		first, err := New(FromServerConfig(cfg, nil))
		require.NoError(t, err)
		t.Cleanup(func() { _ = first.Close() })
		second, err := New(FromServerConfig(cfg, nil))
		require.NoError(t, err)
		t.Cleanup(func() { _ = second.Close() })

		ctx := context.Background()
		require.NoError(t, first.Queue.Push(ctx, model.ModeRegistered, "5", "7"))
		require.Equal(t, matchmaker.OutcomePaired, first.Matchmaker.AttemptPairing(ctx, model.ModeRegistered))
		require.NoError(t, second.Queue.Push(ctx, model.ModeRegistered, "11", "13"))
		require.Equal(t, matchmaker.OutcomePaired, second.Matchmaker.AttemptPairing(ctx, model.ModeRegistered))

		pairs := map[model.SessionID][]model.ParticipantID{}
		for _, id := range []model.SessionID{1, 2} {
			state, err := second.Registry.GetState(ctx, id)
			require.NoError(t, err)
			pairs[id] = []model.ParticipantID{state.FirstID, state.SecondID}

			rec, err := first.Records.GetSessionRecord(ctx, id)
			require.NoError(t, err)
			require.ElementsMatch(t, pairs[id], []model.ParticipantID{rec.FirstID, rec.SecondID})
		}
		require.ElementsMatch(t, []model.ParticipantID{model.Registered(5), model.Registered(7)}, pairs[1])
		require.ElementsMatch(t, []model.ParticipantID{model.Registered(11), model.Registered(13)}, pairs[2])

		counter, err := mini.Get("session_record_id")
		require.NoError(t, err)
		require.Equal(t, "2", counter)
	})

	t.Run("redis without config", func(t *testing.T) {
		_, err := New(Config{StorageType: config.StorageTypeRedis})
		require.Error(t, err)
	})

	t.Run("unknown storage", func(t *testing.T) {
		_, err := New(Config{StorageType: "etcd"})
		require.Error(t, err)
	})
}
