// Package requester is the HTTP request layer of the Dishom client: content
// negotiation, error normalisation and the silent token refresh with a single
// retry.
package requester

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/dishom-client/internal/config"
	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// TokenNotValidCode is the error code of a 401 caused by an expired access token
	TokenNotValidCode = "token_not_valid"
	// RefreshPath is the token refresh endpoint
	RefreshPath = "/api/accounts/token/refresh/"
	// RequestIDHeader correlates client and server logs
	RequestIDHeader = "X-Request-ID"

	defaultTimeout = 30 * time.Second
)

// state is a step of the request state machine, used for tracing only
type state string

const (
	stateSent          state = "SENT"
	stateSuccess       state = "SUCCESS"
	stateFailure       state = "FAILURE"
	stateNeedsRefresh  state = "NEEDS_REFRESH"
	stateRefreshOK     state = "REFRESH_OK"
	stateRefreshFailed state = "REFRESH_FAILED"
	stateRetrySent     state = "RETRY_SENT"
)

// Client issues requests against the Dishom backend
type Client struct {
	client       *http.Client
	baseURL      string
	headers      map[string]string
	tokens       TokenStore
	singleFlight bool
	refreshGroup singleflight.Group
}

type ClientParams struct {
	fx.In

	EndpointConfig *config.EndpointConfig
	RefreshConfig  *config.RefreshConfig
	Tokens         TokenStore
}

// NewClient creates a new Client
func NewClient(params ClientParams) *Client {
	timeout := params.EndpointConfig.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	singleFlight := true
	if params.RefreshConfig != nil {
		singleFlight = params.RefreshConfig.SingleFlight
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:      params.EndpointConfig.BaseURL,
		headers:      params.EndpointConfig.Headers,
		tokens:       params.Tokens,
		singleFlight: singleFlight,
	}
}

// SetTimeout sets the timeout for the HTTP client
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request to base+path. It never fails with a Go error: transport
// and parse failures come back as a KindNetwork outcome. A 401 carrying
// token_not_valid triggers one access token refresh and exactly one retry.
func (c *Client) Do(ctx context.Context, path string, init Init) Outcome {
	method := init.Method
	if method == "" {
		method = http.MethodGet
	}

	var body []byte
	contentType := contentTypeJSON
	if init.Body != nil {
		var err error
		body, contentType, err = init.Body.encode()
		if err != nil {
			logger.Error("failed to encode request body", zap.String("path", path), zap.Error(err))
			return failure(NetworkError(err))
		}
	}

	requestID := uuid.NewString()
	log := logger.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)
	headers := c.mergeHeaders(contentType, init.Headers)
	headers[RequestIDHeader] = requestID

	log.Debug("request state", zap.String("state", string(stateSent)))
	status, payload, err := c.send(ctx, method, path, body, headers, "")
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return failure(NetworkError(err))
	}
	if isSuccess(status) {
		log.Debug("request state", zap.String("state", string(stateSuccess)), zap.Int("status", status))
		return success(payload)
	}

	if status == http.StatusUnauthorized && payload.Get("code").String() == TokenNotValidCode {
		log.Debug("request state", zap.String("state", string(stateNeedsRefresh)))
		if access, ok := c.RefreshAccessToken(ctx); ok {
			log.Debug("request state", zap.String("state", string(stateRefreshOK)))
			log.Debug("request state", zap.String("state", string(stateRetrySent)))
			status, payload, err = c.send(ctx, method, path, body, headers, access)
			if err != nil {
				log.Warn("retry failed", zap.Error(err))
				return failure(NetworkError(err))
			}
			if isSuccess(status) {
				log.Debug("request state", zap.String("state", string(stateSuccess)), zap.Int("status", status))
				return success(payload)
			}
			log.Debug("request state", zap.String("state", string(stateFailure)), zap.Int("status", status))
			return failure(&Error{Kind: KindAPI, Status: status, Body: payload})
		}
		log.Debug("request state", zap.String("state", string(stateRefreshFailed)))
	}

	log.Debug("request state", zap.String("state", string(stateFailure)), zap.Int("status", status))
	return failure(&Error{Kind: KindAPI, Status: status, Body: payload})
}

// mergeHeaders applies the computed content type, then the configured
// headers, then the caller's. Later writes win.
func (c *Client) mergeHeaders(contentType string, caller map[string]string) map[string]string {
	headers := make(map[string]string, len(c.headers)+len(caller)+2)
	headers["Content-Type"] = contentType
	for k, v := range c.headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range caller {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	return headers
}

// send performs one round trip. A non-empty access overrides the
// Authorization header. JSON responses must parse, text is kept verbatim.
func (c *Client) send(ctx context.Context, method, path string, body []byte, headers map[string]string, access string) (int, Payload, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, Payload{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if access != "" {
		applyBearer(req, access)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, Payload{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Debug("failed to close response body", zap.Error(closeErr))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, Payload{}, fmt.Errorf("failed to read response body: %w", err)
	}

	payload := Payload{Raw: raw, ContentType: resp.Header.Get("Content-Type")}
	if payload.IsJSON() && !gjson.ValidBytes(raw) {
		return 0, Payload{}, fmt.Errorf("invalid JSON response with status %d", resp.StatusCode)
	}
	return resp.StatusCode, payload, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
