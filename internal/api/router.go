package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/matchmaker/internal/api/handler"
	"github.com/mcoot/matchmaker/internal/api/middleware"
	"github.com/mcoot/matchmaker/internal/api/response"
	"github.com/mcoot/matchmaker/internal/factory"
	basemw "github.com/mcoot/matchmaker/internal/middleware"
	"github.com/mcoot/matchmaker/internal/notify"
	"github.com/mcoot/matchmaker/internal/services/queue"
	"github.com/mcoot/matchmaker/internal/services/registry"
	"github.com/mcoot/matchmaker/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	Queue         *queue.Service
	Pairer        handler.Pairer
	Registry      *registry.Service
	Records       storage.RecordStore
	Hub           *notify.Hub
	NotifyHandler *notify.Handler
	Metrics       prometheus.Gatherer
}

// RouterConfigFromApp wires the router against a factory-built App
func RouterConfigFromApp(app *factory.App, logger *slog.Logger) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		Queue:         app.Queue,
		Pairer:        app.Matchmaker,
		Registry:      app.Registry,
		Records:       app.Records,
		Hub:           app.Hub,
		NotifyHandler: app.NotifyHandler,
		Metrics:       app.Metrics,
	}
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	queueHandler := handler.NewQueueHandler(cfg.Queue, cfg.Pairer)
	sessionHandler := handler.NewSessionHandler(cfg.Registry, cfg.Records)

	// Create middleware
	loggingMiddleware := basemw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Participant connections
	api.HandleFunc("/events", cfg.NotifyHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/ws", cfg.NotifyHandler.WebSocket).Methods(http.MethodGet)

	// Queue routes
	api.HandleFunc("/queues/{mode}", queueHandler.Length).Methods(http.MethodGet)
	api.HandleFunc("/queues/{mode}", queueHandler.Enqueue).Methods(http.MethodPost)
	api.HandleFunc("/queues/{mode}/attempt", queueHandler.Attempt).Methods(http.MethodPost)

	// Session routes
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler(cfg.Hub)).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(hub *notify.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Clients: hub.ClientCount()})
	}
}
