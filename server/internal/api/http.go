package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/trovedash/console/server/internal/config"
)

type httpServer struct {
	cfg    config.HTTP
	logger zerolog.Logger
	server *http.Server
	errCh  chan error
}

func newHTTPServer(
	cfg config.HTTP,
	handler http.Handler,
	logger zerolog.Logger,
) *httpServer {
	return &httpServer{
		cfg:    cfg,
		logger: logger,
		errCh:  make(chan error, 1),
		server: &http.Server{
			Handler: handler,
			Addr:    fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.Port),
		},
	}
}

// start serves in the background. errCh is closed once the listener returns.
func (s *httpServer) start() {
	go func() {
		defer close(s.errCh)

		s.logger.Info().
			Str("host_port", s.server.Addr).
			Msg("starting http server")

		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()
}

func (s *httpServer) stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error while shutting down http server: %w", err)
	}
	return nil
}
