// Package http exposes the accounting engine over an authenticated HTTP
// API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kitabu/kitabu/internal/adapter/http/middleware"
	"github.com/kitabu/kitabu/internal/service/logger"
)

// RouteRegistrar registers a handler's routes on the router.
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the HTTP server.
type Server struct {
	server *http.Server
	log    logger.Logger
}

// NewServer wires the router, middleware chain and handlers.
func NewServer(config ServerConfig, log logger.Logger, handlers ...RouteRegistrar) *Server {
	router := mux.NewRouter()

	router.Use(middleware.CorrelationID)
	router.Use(middleware.Metrics)
	router.Use(middleware.Recovery(log))

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return &Server{
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		log: log,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
