// Package api wraps the Dishom backend endpoints in typed calls on top of the
// request layer.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brizzai/dishom-client/internal/apispec"
	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/models"
	"github.com/brizzai/dishom-client/internal/requester"
	"github.com/brizzai/dishom-client/internal/tokenstore"
	"go.uber.org/zap"
)

// Client is the typed Dishom API
type Client struct {
	requester *requester.Client
	tokens    *tokenstore.Store
	schema    *apispec.Validator
}

// NewClient creates a new Client. schema may be nil, bodies are then sent unchecked.
func NewClient(r *requester.Client, tokens *tokenstore.Store, schema *apispec.Validator) *Client {
	return &Client{
		requester: r,
		tokens:    tokens,
		schema:    schema,
	}
}

// call sends body as JSON after checking it against the described schema.
// authed attaches the stored access token.
func (c *Client) call(ctx context.Context, method, path string, body any, authed bool) requester.Outcome {
	init := requester.Init{Method: method}
	if authed {
		init.Headers = c.requester.AuthHeaders(ctx)
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return requester.Outcome{Error: requester.ValidationError(fmt.Errorf("failed to encode request: %w", err))}
		}
		if c.schema != nil {
			if err := c.schema.ValidateJSON(ctx, method, path, data); err != nil {
				logger.Debug("request rejected by schema", zap.String("path", path), zap.Error(err))
				return requester.Outcome{Error: requester.ValidationError(err)}
			}
		}
		init.Body = requester.RawJSON(data)
	}

	return c.requester.Do(ctx, path, init)
}

// StoreAuthData persists the token pair and the user. Failures are logged
// and returned, they never undo a successful sign in.
func (c *Client) StoreAuthData(ctx context.Context, tokens models.TokenPair, user models.User) error {
	if err := c.tokens.Persist(ctx, tokens, user); err != nil {
		logger.Warn("failed to store auth data", zap.Error(err))
		return err
	}
	return nil
}

// Logout removes the stored tokens and user
func (c *Client) Logout(ctx context.Context) error {
	if err := c.tokens.Clear(ctx); err != nil {
		logger.Warn("failed to clear auth data", zap.Error(err))
		return err
	}
	return nil
}

// ResolveMediaURL turns a media path from the backend into an absolute URL.
// Absolute and data: URLs are returned as they are.
func (c *Client) ResolveMediaURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") || strings.HasPrefix(path, "data:") {
		return path
	}
	base := c.requester.BaseURL()
	if base == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
