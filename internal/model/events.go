package model

// MessageType identifies an outbound notification
type MessageType string

const (
	MessageSessionStart MessageType = "session_start"
)

// SessionStartMessage tells a participant they have been paired
type SessionStartMessage struct {
	Type             MessageType `json:"type"`
	SessionID        SessionID   `json:"sessionId"`
	Role             Role        `json:"role"`
	FirstTimeBudget  int64       `json:"firstTimeBudget"`
	SecondTimeBudget int64       `json:"secondTimeBudget"`
}

// NewSessionStartMessage builds the start notification for the participant seated in role
func NewSessionStartMessage(state *SessionState, role Role) SessionStartMessage {
	return SessionStartMessage{
		Type:             MessageSessionStart,
		SessionID:        state.SessionID,
		Role:             role,
		FirstTimeBudget:  state.FirstTime,
		SecondTimeBudget: state.SecondTime,
	}
}
