package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/config"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg  *config.Config
	http *http.Server
	svc  *Services
}

func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	svc, err := NewServices(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("setup services: %w", err)
	}

	// agent flows make up to two model calls, so the write timeout leaves
	// room beyond the agent timeout
	writeTimeout := cfg.AgentTimeoutDuration() + 15*time.Second

	return &Server{
		cfg: cfg,
		svc: svc,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      Routes(cfg, svc),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  120 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// the service connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := s.http.Shutdown(shutdownCtx)
		s.svc.Close()
		return err
	case err := <-errCh:
		s.svc.Close()
		return err
	}
}
