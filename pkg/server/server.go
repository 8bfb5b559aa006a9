// Package server exposes timeline layouts over HTTP.
//
// Routes:
//
//	GET /healthz                 liveness and build information
//	GET /api/v1/window           resolved window for granularity, cursor and offset
//	GET /api/v1/timeline         export layout JSON (X-Cache: hit|miss)
//	GET /api/v1/timeline.svg     rendered SVG for the same parameters
//
// Query parameters shared by the timeline routes: granularity, cursor
// (YYYY-MM-DD), offset, q (search), today, tie_break and collation. The SVG
// route also accepts theme, width and lane_height.
//
// Invalid navigation state and other bad parameters answer 400 with a
// {"code", "message"} body. Failures of the item source answer 502.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/source"
)

// Server defaults.
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Empty selects DefaultAddr.
	Addr string

	// Source provides the items. Required.
	Source source.Source

	// Runner computes and caches layouts. Nil uses an uncached runner.
	Runner *pipeline.Runner

	// Defaults seeds every request's pipeline options (granularity,
	// tie-break, collation, theme and geometry from configuration).
	Defaults pipeline.Options

	Logger         *log.Logger
	DisableReqLogs bool

	// Now returns the current time; the date is used as "today" when a
	// request does not set one. Nil uses time.Now.
	Now func() time.Time
}

// Server is the HTTP API.
type Server struct {
	opts   Options
	router chi.Router
}

var _ http.Handler = (*Server)(nil)

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{opts: opts, router: chi.NewRouter()}
	s.setup()
	return s
}

func (s *Server) setup() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.StripSlashes)
	r.Use(observe)
	if !s.opts.DisableReqLogs {
		r.Use(requestLogger(s.opts.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultRequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	r.Get("/healthz", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/window", s.window)
		r.Get("/timeline", s.timeline)
		r.Get("/timeline.svg", s.timelineSVG)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.opts.Addr }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully,
// giving outstanding requests DefaultShutdownTimeout to complete.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", s.opts.Addr, "source", s.opts.Source.Name())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.opts.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.opts.Logger.Error("could not stop server gracefully", "error", err)
			return srv.Close()
		}
		return nil
	}
}
