package notify

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/matchmaker/internal/model"
)

// Handler exposes the SSE and WebSocket endpoints participants connect through
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.With(slog.String("component", "notify-handler")),
	}
}

// Events handles GET /events?mode=...&participant=...
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, err := participantFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ServeSSE(w, r, h.hub, id)
}

// WebSocket handles GET /ws?mode=...&participant=...
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	id, err := participantFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ServeWS(w, r, h.hub, id, h.logger)
}

func participantFromRequest(r *http.Request) (model.ParticipantID, error) {
	q := r.URL.Query()
	mode, err := model.ParseMode(q.Get("mode"))
	if err != nil {
		return model.ParticipantID{}, err
	}
	return model.ParseParticipantID(mode, q.Get("participant"))
}
