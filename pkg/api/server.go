package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"apigw-resource/pkg/metrics"
)

type ServerConfig struct {
	Addr    string
	Version string
	Auth    AuthConfig
}

// Server exposes lifecycle events over HTTP.
type Server struct {
	config   *ServerConfig
	router   *chi.Mux
	handlers *Handlers
	logger   logr.Logger
	server   *http.Server
}

func NewServer(config *ServerConfig, events EventHandler, logger logr.Logger) *Server {
	s := &Server{
		config:   config,
		router:   chi.NewRouter(),
		handlers: NewHandlers(events, config),
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(Logger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handlers.Health)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handlers.Health)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.config.Auth))
			r.Post("/events", s.handlers.Events)
		})
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "addr", s.config.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// Router returns the chi router.
func (s *Server) Router() *chi.Mux {
	return s.router
}
