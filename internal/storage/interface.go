package storage

import (
	"context"

	"github.com/mcoot/matchmaker/internal/model"
)

// Storage defines the shared key-value store the pairing pass runs against
type Storage interface {
	// Queue operations. Entries are pushed at the head and popped from the tail.
	QueueLength(ctx context.Context, mode model.Mode) (int64, error)
	PopQueue(ctx context.Context, mode model.Mode) (entry string, ok bool, err error)
	PushQueue(ctx context.Context, mode model.Mode, entries ...string) error

	// Guest session identifier counter
	NextGuestSessionID(ctx context.Context) (model.SessionID, error)

	// Session state operations
	SaveSessionState(ctx context.Context, state *model.SessionState) error
	GetSessionState(ctx context.Context, id model.SessionID) (*model.SessionState, error)
}

// RecordStore persists durable session records for registered pairings
type RecordStore interface {
	// CreateSessionRecord inserts rec and returns its assigned identifier
	CreateSessionRecord(ctx context.Context, rec *model.SessionRecord) (model.SessionID, error)
	GetSessionRecord(ctx context.Context, id model.SessionID) (*model.SessionRecord, error)
}
