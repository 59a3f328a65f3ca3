// Package metrics holds the Prometheus collectors for pairing passes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AttemptsTotal counts pairing attempts by mode and outcome.
	AttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_attempts_total",
		Help: "Total number of pairing attempts",
	}, []string{"mode", "outcome"})
	// AttemptDuration observes how long attempts that held the lock took.
	AttemptDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchmaker_attempt_duration_seconds",
		Help:    "Duration of pairing attempts that acquired the lock",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"mode"})
	// NotificationsTotal counts session start deliveries by result.
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_notifications_total",
		Help: "Total number of session start notifications",
	}, []string{"result"})
	// PanicsTotal counts panics recovered by the HTTP middleware.
	PanicsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_http_panics_total",
		Help: "Total number of panics recovered while serving HTTP requests",
	}, []string{"method"})
)

// Notification results
const (
	NotificationSent     = "sent"
	NotificationNoClient = "no_connection"
	NotificationFailed   = "failed"
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Register registers the matchmaker metrics on the provided registry.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(AttemptsTotal, AttemptDuration, NotificationsTotal, PanicsTotal)
}
