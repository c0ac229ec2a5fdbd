// Package rest wires the HTTP surface: the network view query, the frame
// stream upgrade endpoint and the operational endpoints.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	querybus "kith-backend/application/queries/bus"
	"kith-backend/interfaces/http/rest/handlers"
	"kith-backend/interfaces/http/rest/middleware"
	"kith-backend/interfaces/websocket"
	apperrors "kith-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	queryBus     *querybus.QueryBus
	hub          *websocket.Hub
	commands     websocket.ViewCommands
	errorHandler *apperrors.ErrorHandler
	enableCORS   bool
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	queryBus *querybus.QueryBus,
	hub *websocket.Hub,
	commands websocket.ViewCommands,
	errorHandler *apperrors.ErrorHandler,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		queryBus:     queryBus,
		hub:          hub,
		commands:     commands,
		errorHandler: errorHandler,
		enableCORS:   enableCORS,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Operational endpoints
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Frame stream
	router.Get("/ws", websocket.Handler(rt.hub, rt.commands, rt.logger))

	// Read-only API
	router.Route("/api/v1", func(r chi.Router) {
		networkHandler := handlers.NewNetworkHandler(rt.queryBus, rt.errorHandler, rt.logger)
		r.Get("/network", networkHandler.GetNetworkView)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports readiness. The catalog is fetched lazily per
// transition, so the process is ready as soon as it serves HTTP.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
