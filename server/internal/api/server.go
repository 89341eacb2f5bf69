package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	goahttp "goa.design/goa/v3/http"

	"github.com/trovedash/console/server/internal/config"
)

type Server struct {
	http  *httpServer
	errCh chan error
}

func NewServer(cfg config.Config, logger zerolog.Logger, svc *Service) *Server {
	handler := newHandler(cfg, logger, svc)

	var httpSvr *httpServer
	if cfg.HTTP.Enabled {
		httpSvr = newHTTPServer(cfg.HTTP, handler, logger)
	}

	return &Server{
		http:  httpSvr,
		errCh: make(chan error, 1),
	}
}

func newHandler(cfg config.Config, logger zerolog.Logger, svc *Service) http.Handler {
	mux := goahttp.NewMuxer()
	svc.Mount(mux)
	if cfg.ProfilingEnabled {
		mountPprofHandlers(mux)
	}
	return addMiddleware(logger, mux)
}

func (s *Server) Start() {
	if s.http == nil {
		return
	}
	s.http.start()
	go func() {
		defer close(s.errCh)
		for err := range s.http.errCh {
			s.errCh <- err
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.stop(ctx)
}

// Error reports a failure of the listener. The channel is closed once the
// listener has returned, whether it failed or was stopped.
func (s *Server) Error() <-chan error {
	return s.errCh
}
