// Package handler provides HTTP request handling for the MCP server.
package handler

import (
	"net/http"
	"time"

	"github.com/brizzai/dishom-client/internal/guard"
	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/session"
	"github.com/brizzai/dishom-client/internal/utils"
	"go.uber.org/zap"
)

// MCPPath is where the streamable HTTP transport is mounted
const MCPPath = "/mcp"

// Landing describes the server on the public landing route
type Landing struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Hydrated      bool   `json:"hydrated"`
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
	Endpoint      string `json:"endpoint"`
	Hint          string `json:"hint,omitempty"`
}

// Handler manages HTTP request handling and middleware configuration.
type Handler struct {
	session *session.Session
	name    string
	version string
}

// NewHandler creates a new HTTP handler.
func NewHandler(s *session.Session, name, version string) *Handler {
	return &Handler{
		session: s,
		name:    name,
		version: version,
	}
}

// CreateHTTPHandler mounts the landing route publicly and the MCP endpoint
// behind the route guard.
func (h *Handler) CreateHTTPHandler(mcpHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+guard.LandingRoute+"{$}", h.landing)
	mux.Handle(MCPPath, guard.Middleware(h.session)(mcpHandler))
	mux.HandleFunc("/", notFound)
	return guard.CORS(LoggingMiddleware(mux))
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	state := h.session.State()
	body := Landing{
		Name:          h.name,
		Version:       h.version,
		Hydrated:      state.Hydrated,
		Authenticated: state.Authenticated(),
		User:          state.User.FullName(),
		Endpoint:      MCPPath,
	}
	if state.Hydrated && !state.Authenticated() {
		body.Hint = "run `dishom login` to sign in"
	}

	utils.WriteJSON(w, http.StatusOK, body)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, "not_found", "no route for "+r.URL.Path, http.StatusNotFound)
}

// LoggingMiddleware logs information about each incoming request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a custom response writer to capture the status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		logger.Info("HTTP Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", rw.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("user_agent", r.UserAgent()),
		)
	})
}

// responseWriter is a custom ResponseWriter that captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code and passes it to the underlying ResponseWriter
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
