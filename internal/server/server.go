// Package server hosts freezeout tables over websockets. Each table is owned
// by one goroutine; connections authenticate with a Noise handshake and talk
// to their table through the Registry.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/ledger"
)

const shutdownTimeout = 5 * time.Second

// Server is the websocket front end for a Registry.
type Server struct {
	cfg      Config
	key      *identity.SigningKey
	ledger   ledger.Ledger
	registry *Registry
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	clock quartz.Clock
	seed  int64

	mu    sync.Mutex
	conns map[*Connection]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for decision and new-hand timers.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithSeed makes seat shuffles and decks deterministic.
func WithSeed(seed int64) Option {
	return func(s *Server) { s.seed = seed }
}

// NewServer creates a server signing its handshakes with key. The config
// must have been validated.
func NewServer(cfg Config, key *identity.SigningKey, l ledger.Ledger, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		key:    key,
		ledger: l,
		logger: logger.With().Str("component", "server").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clock: quartz.NewReal(),
		conns: make(map[*Connection]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = NewRegistry(cfg, l, s.clock, s.seed, logger)
	return s
}

// Registry returns the server's table registry.
func (s *Server) Registry() *Registry { return s.registry }

// Handler serves /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndRun listens on the configured address and runs until ctx is
// cancelled.
func (s *Server) ListenAndRun(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ServerAddress())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Run(ctx, ln)
}

// Run serves on ln and runs the tables until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		return s.registry.Run(gctx)
	})

	g.Go(func() error {
		var err error
		if s.cfg.TLS() {
			httpServer.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			s.logger.Info().Str("address", ln.Addr().String()).Msg("Listening with TLS")
			err = httpServer.ServeTLS(ln, s.cfg.Server.TLSCert, s.cfg.Server.TLSKey)
		} else {
			s.logger.Warn().Str("address", ln.Addr().String()).Msg("Listening without TLS, traffic is protected by Noise only")
			err = httpServer.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.closeConnections()
		return err
	})

	return g.Wait()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	c := newConnection(conn, s)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
	}()

	c.serve(r.Context(), s.key)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}
