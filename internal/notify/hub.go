package notify

import (
	"log/slog"
	"sync"

	"github.com/mcoot/matchmaker/internal/model"
)

// Conn is a live channel to one participant
type Conn interface {
	Send(message []byte) error
}

// ConnectionRegistry resolves a participant to their live connection
type ConnectionRegistry interface {
	Lookup(id model.ParticipantID) (Conn, bool)
}

// Hub tracks the live connection of every connected participant
type Hub struct {
	conns  map[model.ParticipantID]Conn
	mu     sync.RWMutex
	logger *slog.Logger
}

// Ensure Hub implements the interface
var _ ConnectionRegistry = (*Hub)(nil)

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[model.ParticipantID]Conn),
		logger: logger.With(slog.String("component", "hub")),
	}
}

// Register associates conn with id, replacing any earlier connection
func (h *Hub) Register(id model.ParticipantID, conn Conn) {
	h.mu.Lock()
	_, replaced := h.conns[id]
	h.conns[id] = conn
	count := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("client registered",
		slog.String("participant_id", id.String()),
		slog.String("mode", string(id.Mode())),
		slog.Bool("replaced", replaced),
		slog.Int("total_clients", count))
}

// Unregister removes id only if conn is still its current connection
func (h *Hub) Unregister(id model.ParticipantID, conn Conn) {
	h.mu.Lock()
	current, ok := h.conns[id]
	if !ok || current != conn {
		h.mu.Unlock()
		return
	}
	delete(h.conns, id)
	count := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("client unregistered",
		slog.String("participant_id", id.String()),
		slog.Int("total_clients", count))
}

// Lookup returns the live connection for id, if any
func (h *Hub) Lookup(id model.ParticipantID) (Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[id]
	return conn, ok
}

// ClientCount returns the number of connected participants
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
