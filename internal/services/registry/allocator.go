package registry

import (
	"context"

	"github.com/mcoot/matchmaker/internal/dependencies/clock"
	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/storage"
)

// Allocator hands out the identifier for a new session
type Allocator interface {
	Allocate(ctx context.Context, roles model.RoleAssignment) (model.SessionID, error)
}

// GuestAllocator draws ids from the process-wide guest counter
type GuestAllocator struct {
	storage storage.Storage
}

// NewGuestAllocator creates a GuestAllocator
func NewGuestAllocator(storage storage.Storage) *GuestAllocator {
	return &GuestAllocator{storage: storage}
}

// Allocate increments the shared counter
func (a *GuestAllocator) Allocate(ctx context.Context, _ model.RoleAssignment) (model.SessionID, error) {
	return a.storage.NextGuestSessionID(ctx)
}

// RegisteredAllocator inserts an in-progress session record and uses its key
type RegisteredAllocator struct {
	records storage.RecordStore
	clock   clock.Clock
}

// NewRegisteredAllocator creates a RegisteredAllocator
func NewRegisteredAllocator(records storage.RecordStore, clock clock.Clock) *RegisteredAllocator {
	return &RegisteredAllocator{records: records, clock: clock}
}

// Allocate persists the record with its role assignment
func (a *RegisteredAllocator) Allocate(ctx context.Context, roles model.RoleAssignment) (model.SessionID, error) {
	return a.records.CreateSessionRecord(ctx, &model.SessionRecord{
		FirstID:   roles.First,
		SecondID:  roles.Second,
		Status:    model.SessionStatusInProgress,
		CreatedAt: a.clock.Now(),
	})
}
