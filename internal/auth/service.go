// Package auth composes the API client and the session into the account
// flows the user interfaces run: sign in, sign up, sign out and profile edits.
package auth

import (
	"context"
	"io"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/models"
	"github.com/brizzai/dishom-client/internal/requester"
	"github.com/brizzai/dishom-client/internal/session"
	"github.com/brizzai/dishom-client/internal/validation"
	"go.uber.org/zap"
)

// ProfileImageField is the multipart field of the profile picture
const ProfileImageField = "profile_picture"

// Image is a profile picture upload
type Image struct {
	FileName string
	Content  io.Reader
}

// Service runs the account flows
type Service struct {
	api     *api.Client
	session *session.Session
}

// NewService creates a new Service
func NewService(client *api.Client, s *session.Session) *Service {
	return &Service{
		api:     client,
		session: s,
	}
}

// Session returns the session the service writes to
func (s *Service) Session() *session.Session {
	return s.session
}

// API returns the underlying API client
func (s *Service) API() *api.Client {
	return s.api
}

// SignIn logs in, stores the token pair and loads the user into the session.
// When /me/ fails the tokens stay stored, the session is cleared and the
// error is returned.
func (s *Service) SignIn(ctx context.Context, form validation.LoginForm) (models.User, error) {
	if err := validation.Validate(form); err != nil {
		return nil, err
	}

	login := s.api.Login(ctx, api.LoginRequest{
		MobileNumber: form.MobileNumber,
		Password:     form.Password,
	})
	if !login.OK() {
		return nil, login.Err
	}

	_ = s.api.StoreAuthData(ctx, *login.Data, nil)

	me := s.api.FetchCurrentUser(ctx)
	if !me.OK() {
		logger.Warn("signed in but failed to load user", zap.Error(me.Err))
		s.session.SetUser(ctx, nil)
		return nil, me.Err
	}

	s.session.SetUser(ctx, *me.Data)
	logger.Info("signed in", zap.String("user_id", me.Data.ID()))
	return *me.Data, nil
}

// SignUp registers an account and signs it in
func (s *Service) SignUp(ctx context.Context, form validation.RegisterForm) (models.User, error) {
	if err := validation.Validate(form); err != nil {
		return nil, err
	}

	res := s.api.Register(ctx, api.RegisterRequest{
		FullName:     form.FullName,
		MobileNumber: form.MobileNumber,
		Password:     form.Password,
	})
	if !res.OK() {
		return nil, res.Err
	}

	_ = s.api.StoreAuthData(ctx, res.Data.Tokens, res.Data.User)
	s.session.SetUser(ctx, res.Data.User)
	logger.Info("signed up", zap.String("user_id", res.Data.User.ID()))
	return res.Data.User, nil
}

// SignOut clears the stored records and the session user
func (s *Service) SignOut(ctx context.Context) {
	_ = s.api.Logout(ctx)
	s.session.SetUser(ctx, nil)
}

// RefreshUser reloads the user from /me/ into the session
func (s *Service) RefreshUser(ctx context.Context) (models.User, error) {
	me := s.api.FetchCurrentUser(ctx)
	if !me.OK() {
		return nil, me.Err
	}
	s.session.SetUser(ctx, *me.Data)
	return *me.Data, nil
}

// SaveProfile validates and uploads the profile form, then reloads the user
func (s *Service) SaveProfile(ctx context.Context, form validation.ProfileForm, image *Image) (models.User, error) {
	if err := validation.Validate(form); err != nil {
		return nil, err
	}

	body := requester.NewForm().
		Add("full_name", form.FullName).
		Add("mobile_number", form.Phone)
	optional := []struct{ name, value string }{
		{"email", form.Email},
		{"state", form.State},
		{"district", form.District},
		{"pincode", form.Pincode},
		{"current_class", form.CurrentClass},
		{"village", form.Village},
	}
	for _, field := range optional {
		if field.value != "" {
			body.Add(field.name, field.value)
		}
	}
	if image != nil {
		body.AddFile(ProfileImageField, image.FileName, image.Content)
	}

	res := s.api.UpdateProfileForm(ctx, body)
	if !res.OK() {
		return nil, res.Err
	}
	return s.RefreshUser(ctx)
}

// ChangePassword validates the password form and updates the password
func (s *Service) ChangePassword(ctx context.Context, form validation.PasswordForm) error {
	if err := validation.Validate(form); err != nil {
		return err
	}

	res := s.api.UpdateProfileForm(ctx, requester.NewForm().Add("password", form.NewPassword))
	if !res.OK() {
		return res.Err
	}
	return nil
}

// ResetPassword requests a reset mail and returns the backend confirmation
func (s *Service) ResetPassword(ctx context.Context, form validation.PasswordResetForm) (string, error) {
	if err := validation.Validate(form); err != nil {
		return "", err
	}

	res := s.api.RequestPasswordReset(ctx, form.Email)
	if !res.OK() {
		return "", res.Err
	}
	return res.Data.Text(), nil
}
