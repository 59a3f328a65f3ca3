package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/matchmaker/internal/api/request"
	"github.com/mcoot/matchmaker/internal/api/response"
	"github.com/mcoot/matchmaker/internal/model"
	"github.com/mcoot/matchmaker/internal/services/matchmaker"
	"github.com/mcoot/matchmaker/internal/services/queue"
)

// Pairer runs a single pairing pass
type Pairer interface {
	AttemptPairing(ctx context.Context, mode model.Mode) matchmaker.Outcome
}

// QueueHandler handles queue inspection and manual pairing endpoints
type QueueHandler struct {
	queue  *queue.Service
	pairer Pairer
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queue *queue.Service, pairer Pairer) *QueueHandler {
	return &QueueHandler{
		queue:  queue,
		pairer: pairer,
	}
}

// Length handles GET /api/v1/queues/{mode}
func (h *QueueHandler) Length(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	n, err := h.queue.Length(r.Context(), mode)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Queue{Mode: string(mode), Length: n})
}

// Enqueue handles POST /api/v1/queues/{mode}
func (h *QueueHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if len(req.Participants) == 0 {
		WriteError(w, NewInvalidRequestError("At least one participant is required"))
		return
	}

	// Reject entries the matchmaker would drop
	for _, raw := range req.Participants {
		if _, err := model.ParseParticipantID(mode, raw); err != nil {
			WriteError(w, err)
			return
		}
	}

	if err := h.queue.Push(r.Context(), mode, req.Participants...); err != nil {
		WriteError(w, err)
		return
	}

	n, err := h.queue.Length(r.Context(), mode)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, response.Queue{Mode: string(mode), Length: n})
}

// Attempt handles POST /api/v1/queues/{mode}/attempt
func (h *QueueHandler) Attempt(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	outcome := h.pairer.AttemptPairing(r.Context(), mode)
	response.JSON(w, http.StatusOK, response.AttemptFromOutcome(mode, outcome))
}

func modeFromPath(r *http.Request) (model.Mode, error) {
	return model.ParseMode(mux.Vars(r)["mode"])
}
