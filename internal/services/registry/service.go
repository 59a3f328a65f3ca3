package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/matchmaker/internal/dependencies/clock"
	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/storage"
)

// Service allocates sessions and persists their initial state
type Service struct {
	storage    storage.Storage
	allocators map[model.Mode]Allocator
	clock      clock.Clock
	logger     *slog.Logger
}

// New creates a Service with the default allocator for each mode
func New(store storage.Storage, records storage.RecordStore, clk clock.Clock, logger *slog.Logger) *Service {
	return NewWithAllocators(store, map[model.Mode]Allocator{
		model.ModeGuest:      NewGuestAllocator(store),
		model.ModeRegistered: NewRegisteredAllocator(records, clk),
	}, clk, logger)
}

// NewWithAllocators creates a Service with explicit allocators (useful for testing)
func NewWithAllocators(store storage.Storage, allocators map[model.Mode]Allocator, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:    store,
		allocators: allocators,
		clock:      clk,
		logger:     logger.With(slog.String("component", "registry")),
	}
}

// NewInitialState builds the fixed starting state of a session
func NewInitialState(id model.SessionID, roles model.RoleAssignment, now time.Time) *model.SessionState {
	return &model.SessionState{
		SessionID:         id,
		Board:             model.StartingPosition,
		Turn:              model.RoleFirst,
		FirstID:           roles.First,
		SecondID:          roles.Second,
		FirstTime:         model.InitialTimeBudget,
		SecondTime:        model.InitialTimeBudget,
		LastMoveTimestamp: now.UnixMilli(),
	}
}

// CreateSession allocates an identifier using mode's strategy and returns the initial state.
// The state is not persisted until SaveState is called.
func (s *Service) CreateSession(ctx context.Context, mode model.Mode, roles model.RoleAssignment) (*model.SessionState, error) {
	allocator, ok := s.allocators[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownMode, mode)
	}

	id, err := allocator.Allocate(ctx, roles)
	if err != nil {
		return nil, fmt.Errorf("allocate session id: %w", err)
	}

	s.logger.Debug("session id allocated",
		slog.String("mode", string(mode)),
		slog.Int64("session_id", int64(id)),
	)

	return NewInitialState(id, roles, s.clock.Now()), nil
}

// SaveState stores state under its session key
func (s *Service) SaveState(ctx context.Context, state *model.SessionState) error {
	if err := s.storage.SaveSessionState(ctx, state); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}

// GetState retrieves a session's persisted state
func (s *Service) GetState(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	return s.storage.GetSessionState(ctx, id)
}
