package model

import "time"

// SessionID uniquely identifies a session within its mode
type SessionID int64

// SessionStatus is the lifecycle tag of a session record
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusAborted    SessionStatus = "aborted"
)

// Role is one of the two seats in a session
type Role string

const (
	RoleFirst  Role = "w" // moves first
	RoleSecond Role = "b"
)

const (
	// StartingPosition is the board every session starts from (FEN)
	StartingPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	// InitialTimeBudget is each side's clock at creation, in milliseconds
	InitialTimeBudget int64 = 300000
)

// RoleAssignment records which participant took which seat
type RoleAssignment struct {
	First  ParticipantID
	Second ParticipantID
}

// For returns the participant seated in role
func (a RoleAssignment) For(role Role) ParticipantID {
	if role == RoleFirst {
		return a.First
	}
	return a.Second
}

// SessionRecord is the durable entity created for a registered pairing
type SessionRecord struct {
	ID        SessionID
	FirstID   ParticipantID
	SecondID  ParticipantID
	Status    SessionStatus
	CreatedAt time.Time
}

// SessionState is the mutable game state initialised at pairing time
type SessionState struct {
	SessionID         SessionID     `json:"sessionId"`
	Board             string        `json:"board"`
	Turn              Role          `json:"turn"`
	FirstID           ParticipantID `json:"firstParticipantId"`
	SecondID          ParticipantID `json:"secondParticipantId"`
	FirstTime         int64         `json:"firstTime"`
	SecondTime        int64         `json:"secondTime"`
	LastMoveTimestamp int64         `json:"lastMoveTimestamp"` // unix millis
}

// Roles returns the role assignment captured in the state
func (s *SessionState) Roles() RoleAssignment {
	return RoleAssignment{First: s.FirstID, Second: s.SecondID}
}
