package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/loan-e2e/pkg/response"
)

// NewRouter exposes health and run status for the scheduler process
func NewRouter(runs *RunHandler, health *HealthHandler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	router.HandleFunc("/runs", runs.History).Methods(http.MethodGet)
	router.HandleFunc("/runs", runs.Trigger).Methods(http.MethodPost)
	router.HandleFunc("/runs/status", runs.Status).Methods(http.MethodGet)
	router.HandleFunc("/runs/last", runs.Last).Methods(http.MethodGet)

	return router
}
