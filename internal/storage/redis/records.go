package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/storage"
)

// Ensure Storage can hold registered session records
var _ storage.RecordStore = (*Storage)(nil)

// Session record operations. Ids come from one shared INCR so every
// coordinator on the same Redis allocates from the same sequence.

func (s *Storage) CreateSessionRecord(ctx context.Context, rec *model.SessionRecord) (model.SessionID, error) {
	first, ok := rec.FirstID.RegisteredID()
	if !ok {
		return 0, fmt.Errorf("%w: first participant is not registered", model.ErrMalformedParticipantID)
	}
	second, ok := rec.SecondID.RegisteredID()
	if !ok {
		return 0, fmt.Errorf("%w: second participant is not registered", model.ErrMalformedParticipantID)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	n, err := s.client.Incr(ctx, recordCounterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("allocate session record id: %w", err)
	}
	id := model.SessionID(n)

	err = s.client.HSet(ctx, recordKey(id),
		"first_participant_id", first,
		"second_participant_id", second,
		"status", string(rec.Status),
		"created_at", createdAt.UnixMilli(),
	).Err()
	if err != nil {
		return 0, fmt.Errorf("write session record %d: %w", id, err)
	}
	return id, nil
}

func (s *Storage) GetSessionRecord(ctx context.Context, id model.SessionID) (*model.SessionRecord, error) {
	fields, err := s.client.HGetAll(ctx, recordKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session record %d: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, model.ErrSessionNotFound
	}

	first, err := strconv.ParseInt(fields["first_participant_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session record %d first participant: %w", id, err)
	}
	second, err := strconv.ParseInt(fields["second_participant_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session record %d second participant: %w", id, err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session record %d created_at: %w", id, err)
	}

	return &model.SessionRecord{
		ID:        id,
		FirstID:   model.Registered(first),
		SecondID:  model.Registered(second),
		Status:    model.SessionStatus(fields["status"]),
		CreatedAt: time.UnixMilli(createdAt),
	}, nil
}
