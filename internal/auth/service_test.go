package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/brizzai/dishom-client/internal/apispec"
	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/config"
	"github.com/brizzai/dishom-client/internal/models"
	"github.com/brizzai/dishom-client/internal/requester"
	"github.com/brizzai/dishom-client/internal/session"
	"github.com/brizzai/dishom-client/internal/tokenstore"
	"github.com/brizzai/dishom-client/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the accounts endpoints for one user
type fakeBackend struct {
	t        *testing.T
	mu       sync.Mutex
	user     map[string]any
	password string
	meFails  bool
	requests []string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)

	switch r.URL.Path {
	case api.LoginPath:
		var body map[string]string
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != b.password {
			b.write(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		b.write(w, http.StatusOK, map[string]string{"access": "A", "refresh": "B"})
	case api.RegisterPath:
		var body map[string]string
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&body))
		b.user = map[string]any{"id": "9", "full_name": body["full_name"], "mobile_number": body["mobile_number"]}
		b.write(w, http.StatusCreated, map[string]any{
			"tokens": map[string]string{"access": "A", "refresh": "B"},
			"user":   b.user,
		})
	case api.MePath:
		if r.Header.Get("Authorization") != "Bearer A" || b.meFails {
			b.write(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		if r.Method == http.MethodPut {
			require.NoError(b.t, r.ParseMultipartForm(1<<20))
			for key, values := range r.MultipartForm.Value {
				if key == "password" {
					b.password = values[0]
					continue
				}
				b.user[key] = values[0]
			}
			if _, ok := r.MultipartForm.File[auth.ProfileImageField]; ok {
				b.user["profile_picture"] = "/media/profile_pics/9.png"
			}
		}
		b.write(w, http.StatusOK, b.user)
	case api.PasswordResetPath:
		b.write(w, http.StatusOK, map[string]string{"detail": "Password reset e-mail has been sent."})
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.t.Errorf("Failed to encode response: %v", err)
	}
}

func setup(t *testing.T, backend *fakeBackend) (*auth.Service, *tokenstore.Store) {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store := tokenstore.NewStore(tokenstore.NewMemoryStorage())
	r := requester.NewClient(requester.ClientParams{
		EndpointConfig: &config.EndpointConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
		RefreshConfig:  &config.RefreshConfig{SingleFlight: true},
		Tokens:         store,
	})
	schema, err := apispec.NewValidator()
	require.NoError(t, err)

	s := session.New(store)
	s.Hydrate(context.Background())
	return auth.NewService(api.NewClient(r, store, schema), s), store
}

func TestService_SignIn(t *testing.T) {
	backend := &fakeBackend{t: t, password: "password123", user: map[string]any{"id": "7", "full_name": "Asha Rao"}}
	service, store := setup(t, backend)
	ctx := context.Background()

	user, err := service.SignIn(ctx, validation.LoginForm{MobileNumber: "1234567890", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.FullName())
	assert.Equal(t, user, service.Session().User())

	tokens, ok := store.Tokens(ctx)
	require.True(t, ok)
	assert.Equal(t, models.TokenPair{Access: "A", Refresh: "B"}, tokens)

	cached, err := store.LoadUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7", cached.ID())
	assert.Equal(t, []string{"POST " + api.LoginPath, "GET " + api.MePath}, backend.requests)
}

func TestService_SignInFailures(t *testing.T) {
	tests := []struct {
		name         string
		form         validation.LoginForm
		meFails      bool
		wantMessage  string
		wantRequests int
		wantTokens   bool
	}{
		{
			name:         "empty form never reaches the network",
			form:         validation.LoginForm{MobileNumber: "1234567890"},
			wantMessage:  "Please enter both mobile number and password",
			wantRequests: 0,
		},
		{
			name:         "wrong password",
			form:         validation.LoginForm{MobileNumber: "1234567890", Password: "nope"},
			wantMessage:  "No active account found with the given credentials",
			wantRequests: 1,
		},
		{
			name:         "user fetch fails after login",
			form:         validation.LoginForm{MobileNumber: "1234567890", Password: "password123"},
			meFails:      true,
			wantMessage:  "Authentication credentials were not provided.",
			wantRequests: 2,
			wantTokens:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{t: t, password: "password123", meFails: tt.meFails, user: map[string]any{"id": "7"}}
			service, store := setup(t, backend)
			ctx := context.Background()

			user, err := service.SignIn(ctx, tt.form)
			require.Error(t, err)
			assert.Nil(t, user)
			assert.Nil(t, service.Session().User())
			assert.Len(t, backend.requests, tt.wantRequests)

			if tt.wantRequests == 0 {
				var formErr *validation.Error
				require.ErrorAs(t, err, &formErr)
				assert.Equal(t, tt.wantMessage, formErr.Error())
			} else {
				var reqErr *requester.Error
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, tt.wantMessage, reqErr.Message())
			}

			_, ok := store.Tokens(ctx)
			assert.Equal(t, tt.wantTokens, ok)
		})
	}
}

func TestService_SignInClearsPreviousUserWhenFetchFails(t *testing.T) {
	backend := &fakeBackend{t: t, password: "password123", meFails: true, user: map[string]any{"id": "7"}}
	service, store := setup(t, backend)
	ctx := context.Background()

	service.Session().SetUser(ctx, models.User{"id": "1", "full_name": "Previous User"})
	require.NotNil(t, service.Session().User())

	_, err := service.SignIn(ctx, validation.LoginForm{MobileNumber: "1234567890", Password: "password123"})
	require.Error(t, err)
	assert.Nil(t, service.Session().User())

	cached, _ := store.LoadUser(ctx)
	assert.Nil(t, cached)

	tokens, ok := store.Tokens(ctx)
	require.True(t, ok)
	assert.Equal(t, models.TokenPair{Access: "A", Refresh: "B"}, tokens)
}

func TestService_SignUpAndSignOut(t *testing.T) {
	backend := &fakeBackend{t: t}
	service, store := setup(t, backend)
	ctx := context.Background()

	user, err := service.SignUp(ctx, validation.RegisterForm{FullName: "Ravi Kumar", MobileNumber: "9876543210", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", user.FullName())
	assert.True(t, service.Session().State().Authenticated())

	service.SignOut(ctx)
	assert.Nil(t, service.Session().User())
	_, ok := store.Tokens(ctx)
	assert.False(t, ok)
	cached, err := store.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestService_SaveProfile(t *testing.T) {
	backend := &fakeBackend{t: t, password: "password123", user: map[string]any{"id": "7", "full_name": "Asha"}}
	service, _ := setup(t, backend)
	ctx := context.Background()

	_, err := service.SignIn(ctx, validation.LoginForm{MobileNumber: "9876543210", Password: "password123"})
	require.NoError(t, err)

	_, err = service.SaveProfile(ctx, validation.ProfileForm{FullName: "Asha Rao", Phone: "123"}, nil)
	var formErr *validation.Error
	require.ErrorAs(t, err, &formErr)
	assert.Equal(t, "Phone must be 10 digits", formErr.Field("Phone"))

	user, err := service.SaveProfile(ctx, validation.ProfileForm{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Pincode:  "834001",
		Village:  "Kanke",
	}, &auth.Image{FileName: "me.png", Content: strings.NewReader("PNG")})
	require.NoError(t, err)

	assert.Equal(t, "Asha Rao", user.FullName())
	assert.Equal(t, "834001", user.Profile().Pincode)
	assert.Equal(t, "/media/profile_pics/9.png", user.Profile().ProfileImage)
	assert.Equal(t, user, service.Session().User())
	assert.NotContains(t, backend.user, "email")
}

func TestService_ChangePassword(t *testing.T) {
	backend := &fakeBackend{t: t, password: "password123", user: map[string]any{"id": "7"}}
	service, _ := setup(t, backend)
	ctx := context.Background()

	_, err := service.SignIn(ctx, validation.LoginForm{MobileNumber: "9876543210", Password: "password123"})
	require.NoError(t, err)

	err = service.ChangePassword(ctx, validation.PasswordForm{NewPassword: "newpass1", ConfirmPassword: "newpass2"})
	var formErr *validation.Error
	require.ErrorAs(t, err, &formErr)

	require.NoError(t, service.ChangePassword(ctx, validation.PasswordForm{NewPassword: "newpass1", ConfirmPassword: "newpass1"}))
	assert.Equal(t, "newpass1", backend.password)
}

func TestService_ResetPassword(t *testing.T) {
	service, _ := setup(t, &fakeBackend{t: t})

	text, err := service.ResetPassword(context.Background(), validation.PasswordResetForm{Email: "asha@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Password reset e-mail has been sent.", text)

	_, err = service.ResetPassword(context.Background(), validation.PasswordResetForm{})
	assert.Error(t, err)
}
