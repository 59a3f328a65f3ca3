package model

import "errors"

// Common errors used across the application
var (
	// Participant errors
	ErrUnknownMode            = errors.New("unknown mode")
	ErrMalformedParticipantID = errors.New("malformed participant id")

	// Queue errors
	ErrQueueUnderflow = errors.New("queue drained below two entries")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Connection errors
	ErrNoConnection     = errors.New("no live connection for participant")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)
