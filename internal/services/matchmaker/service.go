package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/matchmaker/internal/dependencies/random"
	"github.com/mcoot/matchmaker/internal/lock"
	"github.com/mcoot/matchmaker/internal/metrics"
	"github.com/mcoot/matchmaker/internal/model"
)

const (
	// DefaultLockKey is the store key every coordinator contends on
	DefaultLockKey = "matchmaking_lock"

	// DefaultLockTTL bounds how long a crashed coordinator can hold the lock
	DefaultLockTTL = 5 * time.Second

	releaseTimeout = 2 * time.Second
)

// Outcome classifies how a pairing attempt ended
type Outcome string

const (
	OutcomeContended         Outcome = "contended"          // another coordinator holds the lock
	OutcomeLockFailed        Outcome = "lock_failed"        // lock store unreachable
	OutcomeUnderflow         Outcome = "underflow"          // fewer than two participants waiting
	OutcomeQueueFailed       Outcome = "queue_failed"       // queue store error
	OutcomeDegradedPop       Outcome = "degraded_pop"       // queue drained between length check and pop
	OutcomeMalformedEntry    Outcome = "malformed_entry"    // popped entry did not parse for the mode
	OutcomePersistenceFailed Outcome = "persistence_failed" // session record or state write failed
	OutcomePanicked          Outcome = "panicked"
	OutcomePaired            Outcome = "paired"
)

// Queue is the waiting list the matchmaker drains
type Queue interface {
	Length(ctx context.Context, mode model.Mode) (int64, error)
	PopTwo(ctx context.Context, mode model.Mode) (string, string, error)
}

// SessionRegistry allocates sessions and persists their state
type SessionRegistry interface {
	CreateSession(ctx context.Context, mode model.Mode, roles model.RoleAssignment) (*model.SessionState, error)
	SaveState(ctx context.Context, state *model.SessionState) error
}

// Notifier delivers the session start message to both participants
type Notifier interface {
	SendSessionStart(state *model.SessionState) int
}

// Config holds the lock parameters
type Config struct {
	LockKey string
	LockTTL time.Duration
}

// DefaultConfig returns the lock settings shared by all coordinators
func DefaultConfig() Config {
	return Config{
		LockKey: DefaultLockKey,
		LockTTL: DefaultLockTTL,
	}
}

// Service pairs queued participants into new sessions, one pass at a time across all coordinators
type Service struct {
	locker   lock.Locker
	queue    Queue
	registry SessionRegistry
	notifier Notifier
	random   random.Random
	cfg      Config
	logger   *slog.Logger
}

// New creates a new matchmaker Service
func New(
	locker lock.Locker,
	queue Queue,
	registry SessionRegistry,
	notifier Notifier,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		locker:   locker,
		queue:    queue,
		registry: registry,
		notifier: notifier,
		random:   random,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "matchmaker")),
	}
}

// AttemptPairing runs one pairing pass for mode.
// It never panics or returns an error: every failure is logged and reported as an Outcome.
// Once the lock is acquired it is released exactly once, whatever the outcome.
func (s *Service) AttemptPairing(ctx context.Context, mode model.Mode) (outcome Outcome) {
	logger := s.logger.With(slog.String("mode", string(mode)))
	defer func() {
		metrics.AttemptsTotal.WithLabelValues(string(mode), string(outcome)).Inc()
	}()

	acquired, err := s.locker.TryLock(ctx, s.cfg.LockKey, s.cfg.LockTTL)
	if err != nil {
		logger.Error("failed to acquire matchmaking lock", slog.Any("error", err))
		return OutcomeLockFailed
	}
	if !acquired {
		logger.Debug("matchmaker already running, skipping attempt")
		return OutcomeContended
	}

	start := time.Now()
	defer func() {
		s.release(ctx, logger)
		metrics.AttemptDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("matchmaker panicked", slog.Any("panic", r))
			outcome = OutcomePanicked
		}
	}()

	return s.pair(ctx, mode, logger)
}

// pair is the critical section; the caller holds the lock
func (s *Service) pair(ctx context.Context, mode model.Mode, logger *slog.Logger) Outcome {
	length, err := s.queue.Length(ctx, mode)
	if err != nil {
		logger.Error("failed to read queue length", slog.Any("error", err))
		return OutcomeQueueFailed
	}
	if length < 2 {
		logger.Info("not enough participants to create a session", slog.Int64("queued", length))
		return OutcomeUnderflow
	}

	rawOne, rawTwo, err := s.queue.PopTwo(ctx, mode)
	if err != nil {
		if errors.Is(err, model.ErrQueueUnderflow) {
			logger.Warn("failed to pop two participants despite queue length",
				slog.Int64("queued", length),
				slog.String("dropped_entry", rawOne))
			return OutcomeDegradedPop
		}
		logger.Error("failed to pop participants",
			slog.String("dropped_entry", rawOne),
			slog.Any("error", err))
		return OutcomeQueueFailed
	}

	one, two, err := parsePair(mode, rawOne, rawTwo)
	if err != nil {
		logger.Error("dropping malformed queue entries",
			slog.String("first_entry", rawOne),
			slog.String("second_entry", rawTwo),
			slog.Any("error", err))
		return OutcomeMalformedEntry
	}

	roles := s.assignRoles(one, two)

	state, err := s.registry.CreateSession(ctx, mode, roles)
	if err != nil {
		logger.Error("failed to create session",
			slog.String("first_participant", roles.First.String()),
			slog.String("second_participant", roles.Second.String()),
			slog.Any("error", err))
		return OutcomePersistenceFailed
	}

	if err := s.registry.SaveState(ctx, state); err != nil {
		logger.Error("failed to persist session state",
			slog.Int64("session_id", int64(state.SessionID)),
			slog.Any("error", err))
		return OutcomePersistenceFailed
	}

	delivered := s.notifier.SendSessionStart(state)

	logger.Info("session created",
		slog.Int64("session_id", int64(state.SessionID)),
		slog.String("first_participant", roles.First.String()),
		slog.String("second_participant", roles.Second.String()),
		slog.Int("notified", delivered))

	return OutcomePaired
}

// assignRoles flips one fair coin: above one half the first popped entry moves first
func (s *Service) assignRoles(one, two model.ParticipantID) model.RoleAssignment {
	if s.random.Float64() > 0.5 {
		return model.RoleAssignment{First: one, Second: two}
	}
	return model.RoleAssignment{First: two, Second: one}
}

// release runs even if the attempt's context was cancelled
func (s *Service) release(ctx context.Context, logger *slog.Logger) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.locker.Release(releaseCtx, s.cfg.LockKey); err != nil {
		// The TTL frees the key eventually
		logger.Error("failed to release matchmaking lock", slog.Any("error", err))
	}
}

func parsePair(mode model.Mode, rawOne, rawTwo string) (model.ParticipantID, model.ParticipantID, error) {
	one, err := model.ParseParticipantID(mode, rawOne)
	if err != nil {
		return model.ParticipantID{}, model.ParticipantID{}, fmt.Errorf("first entry: %w", err)
	}
	two, err := model.ParseParticipantID(mode, rawTwo)
	if err != nil {
		return model.ParticipantID{}, model.ParticipantID{}, fmt.Errorf("second entry: %w", err)
	}
	return one, two, nil
}

// Run attempts a pairing for every mode on each tick until ctx is cancelled
func (s *Service) Run(ctx context.Context, interval time.Duration, modes ...model.Mode) {
	s.logger.Info("matchmaker started", slog.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("matchmaker stopped")
			return
		case <-ticker.C:
			for _, mode := range modes {
				s.AttemptPairing(ctx, mode)
			}
		}
	}
}
