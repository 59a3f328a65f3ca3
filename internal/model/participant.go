package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Mode selects which waiting list and identifier strategy apply
type Mode string

const (
	ModeGuest      Mode = "guest"
	ModeRegistered Mode = "registered"
)

// AllModes lists every supported mode
var AllModes = []Mode{ModeRegistered, ModeGuest}

// ParseMode converts a string into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeGuest:
		return ModeGuest, nil
	case ModeRegistered:
		return ModeRegistered, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ParticipantID identifies a queued participant.
// Guests carry an opaque string, registered users a numeric account id.
type ParticipantID struct {
	mode       Mode
	guest      string
	registered int64
}

// Guest returns a guest participant id
func Guest(id string) ParticipantID {
	return ParticipantID{mode: ModeGuest, guest: id}
}

// Registered returns a registered participant id
func Registered(id int64) ParticipantID {
	return ParticipantID{mode: ModeRegistered, registered: id}
}

// ParseParticipantID interprets a raw queue entry according to mode.
// Registered entries must be positive base-10 integers.
func ParseParticipantID(mode Mode, raw string) (ParticipantID, error) {
	switch mode {
	case ModeGuest:
		if raw == "" {
			return ParticipantID{}, fmt.Errorf("%w: empty guest id", ErrMalformedParticipantID)
		}
		return Guest(raw), nil
	case ModeRegistered:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return ParticipantID{}, fmt.Errorf("%w: %q", ErrMalformedParticipantID, raw)
		}
		return Registered(n), nil
	default:
		return ParticipantID{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Mode returns the mode the id belongs to
func (p ParticipantID) Mode() Mode {
	return p.mode
}

// IsZero reports whether p was never set
func (p ParticipantID) IsZero() bool {
	return p.mode == ""
}

// GuestID returns the guest identifier and whether p is a guest
func (p ParticipantID) GuestID() (string, bool) {
	return p.guest, p.mode == ModeGuest
}

// RegisteredID returns the numeric identifier and whether p is registered
func (p ParticipantID) RegisteredID() (int64, bool) {
	return p.registered, p.mode == ModeRegistered
}

// String returns the queue representation of the id
func (p ParticipantID) String() string {
	if p.mode == ModeRegistered {
		return strconv.FormatInt(p.registered, 10)
	}
	return p.guest
}

// MarshalJSON encodes guests as strings and registered ids as numbers
func (p ParticipantID) MarshalJSON() ([]byte, error) {
	switch p.mode {
	case ModeGuest:
		return json.Marshal(p.guest)
	case ModeRegistered:
		return json.Marshal(p.registered)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON infers the mode from the JSON token type
func (p *ParticipantID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ParticipantID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Guest(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedParticipantID, data)
	}
	*p = Registered(n)
	return nil
}
