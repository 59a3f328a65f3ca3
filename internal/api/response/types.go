package response

import (
	"time"

	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/services/matchmaker"
)

// Health is the response for the health endpoint
type Health struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

// Queue reports how many participants wait in one mode
type Queue struct {
	Mode   string `json:"mode"`
	Length int64  `json:"length"`
}

// Attempt is the response after triggering a pairing pass
type Attempt struct {
	Mode    string `json:"mode"`
	Outcome string `json:"outcome"`
}

// AttemptFromOutcome converts a matchmaker outcome
func AttemptFromOutcome(mode model.Mode, outcome matchmaker.Outcome) Attempt {
	return Attempt{
		Mode:    string(mode),
		Outcome: string(outcome),
	}
}

// Session is the operator view of a session's persisted state
type Session struct {
	ID                int64               `json:"id"`
	Board             string              `json:"board"`
	Turn              string              `json:"turn"`
	FirstParticipant  model.ParticipantID `json:"first_participant"`
	SecondParticipant model.ParticipantID `json:"second_participant"`
	FirstTime         int64               `json:"first_time_ms"`
	SecondTime        int64               `json:"second_time_ms"`
	LastMoveAt        time.Time           `json:"last_move_at"`
	Record            *SessionRecord      `json:"record,omitempty"`
}

// SessionRecord is the durable row kept for registered sessions
type SessionRecord struct {
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionFromModel converts model.SessionState, with the record when one exists
func SessionFromModel(s *model.SessionState, rec *model.SessionRecord) Session {
	out := Session{
		ID:                int64(s.SessionID),
		Board:             s.Board,
		Turn:              string(s.Turn),
		FirstParticipant:  s.FirstID,
		SecondParticipant: s.SecondID,
		FirstTime:         s.FirstTime,
		SecondTime:        s.SecondTime,
		LastMoveAt:        time.UnixMilli(s.LastMoveTimestamp).UTC(),
	}
	if rec != nil {
		out.Record = &SessionRecord{
			Status:    string(rec.Status),
			CreatedAt: rec.CreatedAt.UTC(),
		}
	}
	return out
}
