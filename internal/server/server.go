// Package server assembles the HTTP API on chi: middleware chain,
// job routes, artifact routes, and the health/version endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/castforge/castforge/internal/errors"
	"github.com/castforge/castforge/internal/server/handlers"
	"github.com/castforge/castforge/internal/server/middleware"
)

// Options carries the listener settings and handler dependencies.
type Options struct {
	Host string
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	API    *handlers.API
	Logger *zap.Logger
}

// Server wraps http.Server with the assembled router.
type Server struct {
	opts   Options
	router chi.Router
	http   *http.Server
}

// New builds the server. The API may be nil in tests that only
// exercise routing and error handling.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}

	s := &Server{opts: opts}
	s.router = s.buildRouter()
	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: s.router,
		// SSE responses stay open past any write deadline, so the
		// write timeout only applies when streaming is disabled.
		ReadTimeout: opts.ReadTimeout,
		IdleTimeout: opts.IdleTimeout,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(s.opts.Logger))
	r.Use(middleware.Recovery)

	r.NotFound(apperrors.NotFoundHandler())
	r.MethodNotAllowed(apperrors.MethodNotAllowedHandler())

	r.Get("/health", handlers.HealthHandler)
	r.Get("/health/live", handlers.LivenessHandler)
	r.Get("/health/ready", handlers.ReadinessHandler)
	r.Get("/health/startup", handlers.StartupHandler)
	r.Get("/version", handlers.VersionHandler)

	if s.opts.API != nil {
		api := s.opts.API
		r.Route("/api/jobs", func(r chi.Router) {
			r.Post("/", api.CreateJob)
			r.Route("/{jobID}", func(r chi.Router) {
				r.Get("/", api.GetJob)
				r.Get("/events", api.StreamEvents)
				r.Get("/metadata", api.GetJobMetadata)
				r.Get("/script", api.GetScript)
				r.Get("/chapters", api.GetChapters)
				r.Get("/audio", api.GetAudio)
			})
		})
	}

	return r
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.opts.Port
}

// ListenAndServe blocks until the listener stops.
func (s *Server) ListenAndServe() error {
	s.opts.Logger.Info("http server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
