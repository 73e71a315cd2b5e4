package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/brizzai/dishom-client/internal/models"
	"github.com/brizzai/dishom-client/internal/requester"
)

const (
	LoginPath         = "/api/accounts/login/"
	RegisterPath      = "/api/accounts/register/"
	MePath            = "/api/accounts/me/"
	PasswordResetPath = "/api/accounts/password/reset/"
)

// ErrNoUser is set on a /me/ response that carries no user object
var ErrNoUser = errors.New("failed to fetch current user")

type LoginRequest struct {
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

type RegisterRequest struct {
	FullName     string `json:"full_name"`
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

type RegisterResponse struct {
	Tokens models.TokenPair `json:"tokens"`
	User   models.User      `json:"user"`
}

type PasswordResetResponse struct {
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns whichever confirmation the backend sent
func (r PasswordResetResponse) Text() string {
	if r.Detail != "" {
		return r.Detail
	}
	return r.Message
}

// Login exchanges credentials for a token pair. Nothing is stored.
func (c *Client) Login(ctx context.Context, req LoginRequest) Result[models.TokenPair] {
	return decode[models.TokenPair](c.call(ctx, http.MethodPost, LoginPath, req, false))
}

// Register creates an account and returns its tokens and user. Nothing is stored.
func (c *Client) Register(ctx context.Context, req RegisterRequest) Result[RegisterResponse] {
	return decode[RegisterResponse](c.call(ctx, http.MethodPost, RegisterPath, req, false))
}

// FetchCurrentUser loads the authenticated user with the stored access token
func (c *Client) FetchCurrentUser(ctx context.Context) Result[models.User] {
	return userResult(c.call(ctx, http.MethodGet, MePath, nil, true))
}

// UpdateProfile sends a partial JSON update of the current user
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) Result[models.User] {
	return userResult(c.call(ctx, http.MethodPut, MePath, fields, true))
}

// UpdateProfileForm sends a multipart update, used for the profile picture
func (c *Client) UpdateProfileForm(ctx context.Context, form *requester.Form) Result[models.User] {
	outcome := c.requester.Do(ctx, MePath, requester.Init{
		Method:  http.MethodPut,
		Headers: c.requester.AuthHeaders(ctx),
		Body:    form,
	})
	return userResult(outcome)
}

// RequestPasswordReset asks the backend to mail a reset link
func (c *Client) RequestPasswordReset(ctx context.Context, email string) Result[PasswordResetResponse] {
	outcome := c.call(ctx, http.MethodPost, PasswordResetPath, map[string]string{"email": email}, false)
	if outcome.Error != nil {
		return fail[PasswordResetResponse](outcome.Error)
	}
	// some deployments answer with an empty or text body
	if !outcome.Data.IsJSON() {
		return Result[PasswordResetResponse]{Data: &PasswordResetResponse{Detail: outcome.Data.Text()}}
	}
	return decode[PasswordResetResponse](outcome)
}

func userResult(outcome requester.Outcome) Result[models.User] {
	res := decode[models.User](outcome)
	if res.OK() && *res.Data == nil {
		return fail[models.User](&requester.Error{
			Kind:   requester.KindAPI,
			Status: http.StatusOK,
			Body:   *outcome.Data,
			Err:    ErrNoUser,
		})
	}
	return res
}
