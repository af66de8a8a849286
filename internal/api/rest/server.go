package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the REST API server: the external trigger surface for
// reconciliation passes plus read-only views of their outcomes.
type Server struct {
	server  *http.Server
	handler *Handler
	logger  *zap.Logger
}

// NewServer wires routes and middleware around a Handler.
func NewServer(port string, handler *Handler, logger *zap.Logger) *Server {
	router := mux.NewRouter()

	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/passes", handler.TriggerPass).Methods("POST")
	api.HandleFunc("/passes/latest", handler.LatestPass).Methods("GET")
	api.HandleFunc("/jobs/{jobID}", handler.GetJob).Methods("GET")
	api.HandleFunc("/averages", handler.GetAverages).Methods("GET")

	return &Server{
		handler: handler,
		logger:  logger,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start blocks serving HTTP until the listener fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("rest api listening", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
