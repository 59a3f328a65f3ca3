package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/matchmaker/internal/api/response"
	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/services/registry"
	"github.com/mcoot/matchmaker/internal/storage"
)

// SessionHandler serves the persisted state of created sessions
type SessionHandler struct {
	registry *registry.Service
	records  storage.RecordStore
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *registry.Service, records storage.RecordStore) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		records:  records,
	}
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, NewInvalidRequestError("Session id must be a positive integer"))
		return
	}

	state, err := h.registry.GetState(r.Context(), model.SessionID(id))
	if err != nil {
		WriteError(w, err)
		return
	}

	// Only registered sessions have a record
	var rec *model.SessionRecord
	if state.FirstID.Mode() == model.ModeRegistered && h.records != nil {
		rec, err = h.records.GetSessionRecord(r.Context(), state.SessionID)
		if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			WriteError(w, err)
			return
		}
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(state, rec))
}
