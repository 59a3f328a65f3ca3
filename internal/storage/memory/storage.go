package memory

import (
	"context"
	"sync"

	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/storage"
)

// Storage is an in-memory implementation of the storage interfaces
type Storage struct {
	mu sync.RWMutex

	// queues hold entries head first; pops take from the tail
	queues         map[model.Mode][]string
	guestCounter   int64
	sessionStates  map[model.SessionID]*model.SessionState
	sessionRecords map[model.SessionID]*model.SessionRecord
	lastRecordID   int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		queues:         make(map[model.Mode][]string),
		sessionStates:  make(map[model.SessionID]*model.SessionState),
		sessionRecords: make(map[model.SessionID]*model.SessionRecord),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage     = (*Storage)(nil)
	_ storage.RecordStore = (*Storage)(nil)
)

// Queue operations

func (s *Storage) QueueLength(ctx context.Context, mode model.Mode) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.queues[mode])), nil
}

func (s *Storage) PopQueue(ctx context.Context, mode model.Mode) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[mode]
	if len(q) == 0 {
		return "", false, nil
	}
	entry := q[len(q)-1]
	s.queues[mode] = q[:len(q)-1]
	return entry, true, nil
}

func (s *Storage) PushQueue(ctx context.Context, mode model.Mode, entries ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.queues[mode] = append([]string{e}, s.queues[mode]...)
	}
	return nil
}

// Counter operations

func (s *Storage) NextGuestSessionID(ctx context.Context) (model.SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guestCounter++
	return model.SessionID(s.guestCounter), nil
}

// Session state operations

func (s *Storage) SaveSessionState(ctx context.Context, state *model.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *state
	s.sessionStates[state.SessionID] = &stored
	return nil
}

func (s *Storage) GetSessionState(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessionStates[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	out := *state
	return &out, nil
}

// Session record operations

func (s *Storage) CreateSessionRecord(ctx context.Context, rec *model.SessionRecord) (model.SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRecordID++
	stored := *rec
	stored.ID = model.SessionID(s.lastRecordID)
	s.sessionRecords[stored.ID] = &stored
	return stored.ID, nil
}

func (s *Storage) GetSessionRecord(ctx context.Context, id model.SessionID) (*model.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessionRecords[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	out := *rec
	return &out, nil
}

// SessionCount returns how many session states are stored (for tests)
func (s *Storage) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessionStates)
}
