// Package server implements the lanegraph HTTP API.
//
// Routes:
//
//	GET  /healthz      liveness probe
//	POST /v1/layout    dataset JSON in, layout JSON out
//	POST /v1/render    dataset JSON in, rendering out (?format=svg|txt|dot|json|png|pdf)
//
// Layout options are passed as query parameters: frontier (repeatable),
// dep_order, max_rows and strict. Render additionally accepts style,
// cell_size, labels and detailed. Errors are returned as
// {"code": ..., "message": ...} with a status derived from the code.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lanegraph/pkg/config"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// serve context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server serves the layout pipeline over HTTP.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.ServerConfig
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
}

// New creates a server. defaults supplies the options used when a request
// leaves them out.
func New(runner *pipeline.Runner, cfg config.ServerConfig, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		cfg:      cfg,
		defaults: defaults,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errMethodNotAllowed)
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
