package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/logger"
)

// Server serves the viewer API until its context ends, then drains
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer      *http.Server
	logger          *logger.Logger
	shutdownTimeout time.Duration
	drain           []func()
}

// New creates the viewer API server on PORT with the configured timeouts
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
		logger:          log.Module("api"),
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// OnDrain registers fn to run after the listener has shut down,
// e.g. waiting for a pipeline run triggered through the API.
func (s *Server) OnDrain(fn func()) {
	s.drain = append(s.drain, fn)
}

// Run listens on the configured address and serves until ctx ends
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends. Shutdown waits up to the shutdown timeout
// for open requests, then every drain func runs in registration order.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.WithField("addr", ln.Addr().String()).Info("Viewer API listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down viewer API")

	shutdownCtx := context.Background()
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.shutdownTimeout)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	for _, fn := range s.drain {
		fn()
	}
	s.logger.Info("Viewer API stopped")
	return nil
}
