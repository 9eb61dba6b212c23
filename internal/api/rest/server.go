package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/hardwood/internal/cache"
	"github.com/fortuna/hardwood/internal/metrics"
	"github.com/fortuna/hardwood/internal/ratings"
	"github.com/fortuna/hardwood/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, rc *cache.RedisCache, solver ratings.Solver, recorder *metrics.Recorder) *Server {
	handler := NewHandler(db, rc, solver)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)
	if recorder != nil {
		router.Use(MetricsMiddleware(recorder))
		router.Handle("/metrics", recorder.Handler()).Methods("GET")
	}

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Season stats
	api.HandleFunc("/seasons/{season}/stats", handler.GetSeasonStats).Methods("GET")
	api.HandleFunc("/seasons/{season}/teams/{teamID}/stats", handler.GetTeamStats).Methods("GET")

	// Games
	api.HandleFunc("/games", handler.GetGamesByDate).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{teamID}/games", handler.GetTeamGames).Methods("GET")

	// Training features
	api.HandleFunc("/features", handler.GetTrainingFeatures).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
