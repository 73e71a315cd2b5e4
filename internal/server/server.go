// Package server exposes the Dishom account flows as an MCP (Model Context
// Protocol) server over stdio or streamable HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/config"
	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/server/handler"
	"github.com/brizzai/dishom-client/internal/server/tool"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

// Server is the MCP server instance. It supports the HTTP and STDIO modes.
type Server struct {
	config  *config.ServerConfig
	mcp     *mcpserver.MCPServer
	auth    *auth.Service
	handler *handler.Handler
	tool    *tool.Handler
}

// NewServer creates a new MCP server with every account tool registered
func NewServer(cfg *config.ServerConfig, service *auth.Service) *Server {
	if cfg == nil {
		logger.Fatal("Config cannot be nil")
	}
	if service == nil {
		logger.Fatal("Auth service cannot be nil")
	}

	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	srv := &Server{
		config:  cfg,
		mcp:     mcpServer,
		auth:    service,
		handler: handler.NewHandler(service.Session(), cfg.Name, cfg.Version),
		tool:    tool.NewHandler(service.Session()),
	}
	srv.setupTools()

	return srv
}

// MCP returns the underlying MCP server
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// HTTPHandler returns the handler served in HTTP mode
func (s *Server) HTTPHandler() http.Handler {
	return s.handler.CreateHTTPHandler(mcpserver.NewStreamableHTTPServer(s.mcp))
}

func (s *Server) ServeHTTP(ctx context.Context) error {
	logger.Info("Starting HTTP server")
	return s.serveHTTP(ctx, s.HTTPHandler(), "HTTP")
}

func (s *Server) serveHTTP(ctx context.Context, h http.Handler, mode string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting server",
			zap.String("mode", mode),
			zap.String("address", addr),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server",
			zap.String("mode", mode),
			zap.Duration("timeout", shutdownTimeout),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

// ServeSTDIO serves MCP over in and out
func (s *Server) ServeSTDIO(ctx context.Context, in io.Reader, out io.Writer) error {
	logger.Info("Starting STDIO server")
	stdioServer := mcpserver.NewStdioServer(s.mcp)
	return stdioServer.Listen(ctx, in, out)
}

// Start starts the server in the configured mode (HTTP or STDIO).
// It returns an error if the server fails to start or encounters an error
// during operation.
func (s *Server) Start(ctx context.Context) error {
	logger.Info("Starting server",
		zap.String("mode", string(s.config.Mode)),
		zap.String("version", s.config.Version),
	)

	switch s.config.Mode {
	case config.ServerModeHTTP:
		return s.ServeHTTP(ctx)
	case config.ServerModeSTDIO:
		return s.ServeSTDIO(ctx, os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("unsupported server mode: %s", s.config.Mode)
	}
}

// Module provides the MCP server dependencies
var Module = fx.Module("mcp_server",
	fx.Provide(
		NewServer,
	),
)
