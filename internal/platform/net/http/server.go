package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"time"

	"hostdesk/internal/platform/config"
	"hostdesk/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns the root chi mux and the stdlib server in front of it
type Server struct {
	mux    *chi.Mux
	srv    *stdhttp.Server
	drain  time.Duration
	listen func() error
}

// NewServer reads PORT (":4000"), READ_HEADER_TIMEOUT and SHUTDOWN_TIMEOUT off cfg
// a bare port number listens on every interface
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("PORT", ":4000")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	m := chi.NewRouter()
	s := &Server{
		mux:   m,
		drain: cfg.MayDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: cfg.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		},
	}
	s.listen = s.srv.ListenAndServe
	return s
}

// Router returns the Router seam over the root mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Handler is the root handler, for tests and embedding
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Addr returns the listen address
func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is done, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("http listening")
		errc <- s.listen()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("drain", s.drain).Msg("http shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drain)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}
