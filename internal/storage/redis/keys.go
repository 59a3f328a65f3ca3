package redis

import (
	"fmt"

	"github.com/mcoot/matchmaker/internal/model"
)

// Key names are shared with the enqueueing and play services, so they carry no prefix

const (
	registeredQueueKey = "matchmaking_queue"
	guestQueueKey      = "matchmaking_queue:guest"
	guestCounterKey    = "guest_session_id"
	recordCounterKey   = "session_record_id"
)

// queueKey returns the list key holding waiting participants for mode
func queueKey(mode model.Mode) string {
	if mode == model.ModeGuest {
		return guestQueueKey
	}
	return registeredQueueKey
}

// sessionKey returns the key holding the JSON state of a session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("session:%d", id)
}

// recordKey returns the hash holding a registered session record
func recordKey(id model.SessionID) string {
	return fmt.Sprintf("session_record:%d", id)
}
