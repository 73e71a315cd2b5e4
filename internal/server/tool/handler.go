// Package tool adapts the account flows to MCP tool handlers.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brizzai/dishom-client/internal/guard"
	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/requester"
	"github.com/brizzai/dishom-client/internal/session"
	"github.com/brizzai/dishom-client/internal/validation"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NotSignedInMessage is returned by protected tools without a user
const NotSignedInMessage = "Unauthorized: not signed in, call the login tool or run `dishom login`"

// Handler manages tool execution and the session check of protected tools.
type Handler struct {
	session *session.Session
}

// NewHandler creates a new tool handler.
func NewHandler(s *session.Session) *Handler {
	return &Handler{session: s}
}

// Public wraps fn with call logging only
func (h *Handler) Public(name string, fn mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger.Debug("Tool call", zap.String("tool", name))
		return fn(session.WithSession(ctx, h.session), request)
	}
}

// Protected wraps fn so that it only runs once the session is hydrated and
// holds a user
func (h *Handler) Protected(name string, fn mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		state, err := guard.Require(ctx, h.session)
		if err != nil {
			logger.Info("Refused protected tool call",
				zap.String("tool", name),
				zap.Error(err),
			)
			if errors.Is(err, guard.ErrNotAuthenticated) {
				return mcp.NewToolResultError(NotSignedInMessage), nil
			}
			return nil, fmt.Errorf("failed to wait for session: %w", err)
		}

		logger.Debug("Authenticated tool call",
			zap.String("tool", name),
			zap.String("user", state.User.ID()),
		)
		return fn(session.WithSession(ctx, h.session), request)
	}
}

// JSONResult renders v as the text of a tool result
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorResult turns a flow error into a tool error the model can read
func ErrorResult(err error) *mcp.CallToolResult {
	var formErr *validation.Error
	var reqErr *requester.Error
	switch {
	case errors.As(err, &formErr):
		return mcp.NewToolResultError("Invalid input: " + formErr.Error())
	case errors.As(err, &reqErr) && reqErr.Kind == requester.KindAPI:
		return mcp.NewToolResultErrorf("HTTP Error %d: %s", reqErr.Status, reqErr.Message())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
