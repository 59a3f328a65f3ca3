package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcoot/matchmaker/internal/metrics"
	"github.com/mcoot/matchmaker/internal/model"
)

// Dispatcher delivers best-effort notifications to connected participants
type Dispatcher struct {
	registry ConnectionRegistry
	logger   *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(registry ConnectionRegistry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// Notify sends msg to id's live connection
func (d *Dispatcher) Notify(id model.ParticipantID, msg any) error {
	conn, ok := d.registry.Lookup(id)
	if !ok {
		metrics.NotificationsTotal.WithLabelValues(metrics.NotificationNoClient).Inc()
		return model.ErrNoConnection
	}

	data, err := json.Marshal(msg)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.NotificationFailed).Inc()
		return fmt.Errorf("encode notification: %w", err)
	}

	if err := conn.Send(data); err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.NotificationFailed).Inc()
		return err
	}

	metrics.NotificationsTotal.WithLabelValues(metrics.NotificationSent).Inc()
	return nil
}

// SendSessionStart tells both participants of state which seat they hold.
// Each delivery is independent; failures are logged and never returned.
// It returns the number of participants reached.
func (d *Dispatcher) SendSessionStart(state *model.SessionState) int {
	delivered := 0
	roles := state.Roles()
	for _, role := range []model.Role{model.RoleFirst, model.RoleSecond} {
		id := roles.For(role)
		if err := d.Notify(id, model.NewSessionStartMessage(state, role)); err != nil {
			d.logger.Warn("session start notification not delivered",
				slog.Int64("session_id", int64(state.SessionID)),
				slog.String("participant_id", id.String()),
				slog.String("role", string(role)),
				slog.Any("error", err))
			continue
		}
		delivered++
	}
	return delivered
}
