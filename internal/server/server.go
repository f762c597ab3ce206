// Package server runs the MCP server over one of its transports.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config holds HTTP server configuration.
// There is no write timeout: a tool call blocks until its process exits.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns default HTTP server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              "127.0.0.1:8080",
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Server wraps the HTTP server for the streamable HTTP transport.
type Server struct {
	config Config
	logger *slog.Logger
	http   *http.Server
}

// NewServer creates an HTTP server serving handler.
func NewServer(handler http.Handler, config Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: config,
		logger: logger,
		http: &http.Server{
			Addr:              config.Addr,
			Handler:           handler,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			IdleTimeout:       config.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("HTTP server shutdown complete")
	return nil
}

// RunStdio serves server over stdin/stdout until the client disconnects or
// ctx is done.
func RunStdio(ctx context.Context, server *mcp.Server, logger *slog.Logger) error {
	return RunTransport(ctx, server, &mcp.StdioTransport{}, logger)
}

// RunTransport serves server over t until the session ends or ctx is done.
func RunTransport(ctx context.Context, server *mcp.Server, t mcp.Transport, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("serving MCP", "transport", fmt.Sprintf("%T", t))
	err := server.Run(ctx, t)
	if err != nil && ctx.Err() != nil {
		// Cancellation by signal is a normal exit.
		return nil
	}
	return err
}
