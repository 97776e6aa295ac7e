// Package server constructs the relay service: one hub, one HTTP server and
// the pumps of every connected client, with a single shutdown path.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/gochat-relay/internal/chat"
)

// Server owns the hub and everything that feeds it.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	hub        *chat.Hub
	origins    originPolicy
	upgrader   websocket.Upgrader
	httpServer *http.Server

	mu      sync.Mutex
	closing bool
	pumps   sync.WaitGroup
}

// New builds a Server from cfg. Extra hub options are applied after the ones
// derived from cfg. Call StartHub before serving traffic.
func New(cfg *Config, logger *slog.Logger, opts ...chat.Option) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	sanitized := sanitizeConfig(*cfg)

	hubOpts := append([]chat.Option{
		chat.WithLogger(logger.With("component", "hub")),
		chat.WithHistoryLimit(sanitized.HistoryLimit),
	}, opts...)

	s := &Server{
		cfg:     sanitized,
		logger:  logger,
		hub:     chat.NewHub(hubOpts...),
		origins: newOriginPolicy(sanitized.AllowedOrigins, logger),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}
	s.httpServer = CreateServer(sanitized.Port, s.Routes())
	return s
}

// Hub returns the hub driven by this server.
func (s *Server) Hub() *chat.Hub {
	return s.hub
}

// Config returns the sanitized configuration in use.
func (s *Server) Config() Config {
	cfg := s.cfg
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// StartHub runs the hub loop in a separate goroutine.
func (s *Server) StartHub() {
	go s.hub.Run()
	s.logger.Info("hub started and ready to manage WebSocket connections")
}

// ListenAndServe serves HTTP on the configured port until Shutdown.
func (s *Server) ListenAndServe() error {
	return StartServer(s.logger, s.httpServer)
}

// Shutdown stops accepting connections, closes every live session and waits
// for the client pumps to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	if err := ShutdownServer(ctx, s.logger, s.httpServer); err != nil {
		errs = append(errs, err)
	}

	if err := s.hub.Shutdown(s.cfg.ShutdownTimeout); err != nil {
		errs = append(errs, err)
	}

	done := make(chan struct{})
	go func() {
		s.pumps.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("client pumps still running after shutdown deadline")
		errs = append(errs, ctx.Err())
	}

	return errors.Join(errs...)
}

// startPumps launches the read and write goroutines of c. It reports false
// once Shutdown has begun; the caller then owns closing c.
func (s *Server) startPumps(c *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}

	s.pumps.Add(2)
	go func() {
		defer s.pumps.Done()
		c.writePump()
	}()
	go func() {
		defer s.pumps.Done()
		c.readPump()
	}()
	return true
}
