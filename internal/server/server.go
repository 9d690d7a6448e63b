// Package server serves the routine builder page and the JSON API.
//
// Routes:
//
//	GET    /                              routine builder form
//	POST   /                              compose and show a routine
//	GET    /healthz                       liveness and build info
//	POST   /api/routines                  compose a routine (?save=true stores it)
//	GET    /api/routines                  list saved routines
//	GET    /api/routines/{id}             fetch a saved routine
//	DELETE /api/routines/{id}             delete a saved routine
//	GET    /api/formations/{category}     formation diagram (?team_size=N)
//	GET    /api/time/{seconds}            time label
//	GET    /metrics                       Prometheus metrics (when enabled)
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cheertower/pkg/config"
	"github.com/matzehuels/cheertower/pkg/pipeline"
)

// Server wires the routine pipeline to HTTP.
type Server struct {
	runner *pipeline.Runner
	cfg    config.ServerConfig
	logger *log.Logger
	now    func() time.Time

	metrics http.Handler
}

// New creates a server. A nil logger logs to the default logger.
func New(runner *pipeline.Runner, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.RequestTimeout.Duration <= 0 {
		cfg.RequestTimeout.Duration = 15 * time.Second
	}
	return &Server{
		runner: runner,
		cfg:    cfg,
		logger: logger.WithPrefix("http"),
		now:    time.Now,
	}
}

// EnableMetrics serves h on GET /metrics.
func (s *Server) EnableMetrics(h http.Handler) *Server {
	s.metrics = h
	return s
}

// Run listens on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout.Duration,
		WriteTimeout: s.cfg.WriteTimeout.Duration,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	timeout := s.cfg.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
