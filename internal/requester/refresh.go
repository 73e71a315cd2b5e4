package requester

import (
	"context"
	"net/http"

	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const refreshFlightKey = "refresh"

// RefreshAccessToken exchanges the stored refresh token for a new access
// token and merges it into the persisted pair. Every failure is silent and
// reported as ok == false. Concurrent callers share one in-flight refresh
// unless single flight is disabled.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, bool) {
	if !c.singleFlight {
		return c.refresh(ctx)
	}

	// The flight outlives any single caller; each caller stops waiting on
	// its own context instead.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(refreshFlightKey, func() (any, error) {
		access, _ := c.refresh(flightCtx)
		return access, nil
	})

	select {
	case res := <-ch:
		access, _ := res.Val.(string)
		if res.Shared {
			logger.Debug("joined in-flight token refresh")
		}
		return access, access != ""
	case <-ctx.Done():
		logger.Debug("stopped waiting for token refresh", zap.Error(ctx.Err()))
		return "", false
	}
}

func (c *Client) refresh(ctx context.Context) (string, bool) {
	refreshToken, ok := c.tokens.Refresh(ctx)
	if !ok {
		logger.Debug("no refresh token, skipping refresh")
		return "", false
	}

	body, _, err := JSON(map[string]string{"refresh": refreshToken}).encode()
	if err != nil {
		return "", false
	}

	headers := c.mergeHeaders(contentTypeJSON, nil)
	status, payload, err := c.send(ctx, http.MethodPost, RefreshPath, body, headers, "")
	if err != nil {
		logger.Warn("token refresh failed", zap.Error(err))
		return "", false
	}
	if !isSuccess(status) {
		logger.Info("token refresh rejected", zap.Int("status", status))
		return "", false
	}

	access := gjson.GetBytes(payload.Raw, "access")
	if access.Type != gjson.String || access.Str == "" {
		logger.Warn("token refresh response has no access token")
		return "", false
	}

	if err := c.tokens.MergeAccess(ctx, access.Str); err != nil {
		logger.Warn("failed to persist refreshed access token", zap.Error(err))
	}
	return access.Str, true
}
