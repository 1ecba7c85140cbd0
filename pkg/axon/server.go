package axon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ServerConfig holds configuration for the Axon web server
type ServerConfig struct {
	// Port is the port to listen on (default: 3000)
	Port string

	// Host is the host to bind to (default: "")
	Host string

	// ShutdownTimeout is the timeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns a server configuration with sensible defaults
func DefaultServerConfig() *ServerConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	return &ServerConfig{
		Port:            port,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Server runs a WebServerInterface until its context is cancelled or a termination signal arrives
type Server struct {
	web    WebServerInterface
	config *ServerConfig
	logger Logger
}

// NewServer creates a new Axon server with the given configuration
func NewServer(web WebServerInterface, config *ServerConfig, logger Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	if logger == nil {
		logger = NopLogger
	}
	return &Server{web: web, config: config, logger: logger}
}

// Web returns the underlying adapter for advanced configuration
func (s *Server) Web() WebServerInterface {
	return s.web
}

// Run starts the server and blocks until ctx is done, SIGINT/SIGTERM is received or the listener fails
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := s.config.Addr()
		s.logger.Infof("starting %s server on %s", s.web.Name(), addr)
		if err := s.web.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infof("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.web.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Infof("server shutdown complete")
	return nil
}
