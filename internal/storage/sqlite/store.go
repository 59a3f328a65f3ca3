// Package sqlite provides the SQLite-backed record store for registered sessions.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists session records in SQLite.
type Store struct {
	db *sql.DB
}

// Ensure Store implements the interface
var _ storage.RecordStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite record store at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateSessionRecord inserts one record and returns its autoincrement id.
// Only registered participants can own a durable record.
func (s *Store) CreateSessionRecord(ctx context.Context, rec *model.SessionRecord) (model.SessionID, error) {
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

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (first_participant_id, second_participant_id, status, created_at)
		 VALUES (?, ?, ?, ?)`,
		first, second, string(rec.Status), toMillis(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session id: %w", err)
	}
	return model.SessionID(id), nil
}

// GetSessionRecord loads one record by id.
func (s *Store) GetSessionRecord(ctx context.Context, id model.SessionID) (*model.SessionRecord, error) {
	var (
		first, second, createdAt int64
		status                   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT first_participant_id, second_participant_id, status, created_at
		 FROM sessions WHERE id = ?`, int64(id),
	).Scan(&first, &second, &status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &model.SessionRecord{
		ID:        id,
		FirstID:   model.Registered(first),
		SecondID:  model.Registered(second),
		Status:    model.SessionStatus(status),
		CreatedAt: fromMillis(createdAt),
	}, nil
}
