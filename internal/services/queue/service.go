package queue

import (
	"context"

	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/storage"
)

// Service exposes the per-mode waiting lists to the matchmaker
type Service struct {
	storage storage.Storage
}

// New creates a new queue Service
func New(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// Length returns the number of participants waiting in mode's queue
func (s *Service) Length(ctx context.Context, mode model.Mode) (int64, error) {
	return s.storage.QueueLength(ctx, mode)
}

// PopTwo removes the two entries at the pop end of mode's queue.
// If the queue runs dry part way it returns ErrQueueUnderflow along with
// whatever was already removed; removed entries are not pushed back.
func (s *Service) PopTwo(ctx context.Context, mode model.Mode) (string, string, error) {
	first, ok, err := s.storage.PopQueue(ctx, mode)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", model.ErrQueueUnderflow
	}

	second, ok, err := s.storage.PopQueue(ctx, mode)
	if err != nil {
		return first, "", err
	}
	if !ok {
		return first, "", model.ErrQueueUnderflow
	}
	return first, second, nil
}

// Push appends entries to the head of mode's queue
func (s *Service) Push(ctx context.Context, mode model.Mode, entries ...string) error {
	return s.storage.PushQueue(ctx, mode, entries...)
}
