package requester

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	// AuthHeaderName is the name of the Authorization header
	AuthHeaderName = "Authorization"
	// TokenType for Bearer authentication
	TokenType = "Bearer"
)

// TokenStore is the part of the token store the request layer needs
type TokenStore interface {
	Access(ctx context.Context) (string, bool)
	Refresh(ctx context.Context) (string, bool)
	MergeAccess(ctx context.Context, access string) error
}

// applyBearer sets the Authorization header for access
func applyBearer(req *http.Request, access string) {
	(&oauth2.Token{AccessToken: access, TokenType: TokenType}).SetAuthHeader(req)
}

// BearerHeader returns the Authorization header value for access
func BearerHeader(access string) string {
	return (&oauth2.Token{AccessToken: access, TokenType: TokenType}).Type() + " " + access
}

// AuthHeaders returns the Authorization header for the stored access token,
// or an empty map when there is none
func (c *Client) AuthHeaders(ctx context.Context) map[string]string {
	headers := make(map[string]string, 1)
	if access, ok := c.tokens.Access(ctx); ok {
		headers[AuthHeaderName] = BearerHeader(access)
	}
	return headers
}
