package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ tea.Model = DashboardModel{}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(api.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]string{"access": "A", "refresh": "B"})
	})
	mux.HandleFunc(api.MePath, func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{"id": 7, "full_name": "Asha Rao", "mobile_number": "1234567890"})
	})
	mux.HandleFunc(api.MetricsPath, func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]any{
			"active_users": map[string]any{"current": 120, "prev": 100, "pct": 20},
			"revenue":      map[string]any{"current": "1520.50", "prev": "1600.00", "pct": -4.97},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newService(t *testing.T, storage tokenstore.Storage) *auth.Service {
	t.Helper()
	server := newBackend(t)

	store := tokenstore.NewStore(storage)
	r := requester.NewClient(requester.ClientParams{
		EndpointConfig: &config.EndpointConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
		RefreshConfig:  &config.RefreshConfig{SingleFlight: true},
		Tokens:         store,
	})
	schema, err := apispec.NewValidator()
	require.NoError(t, err)

	return auth.NewService(api.NewClient(r, store, schema), session.New(store))
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(AppModel)
	require.True(t, ok)
	return app, cmd
}

func TestAppModel_Guard(t *testing.T) {
	cachedUser := models.User{"id": "7", "full_name": "Asha Rao"}

	tests := []struct {
		name      string
		cached    models.User
		wantRoute string
		wantView  string
	}{
		{
			name:      "No stored user redirects to landing",
			wantRoute: LandingRoute,
			wantView:  "Sign in to continue",
		},
		{
			name:      "Stored user opens the dashboard",
			cached:    cachedUser,
			wantRoute: DashboardRoute,
			wantView:  "Asha Rao",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := tokenstore.NewMemoryStorage()
			if tt.cached != nil {
				require.NoError(t, tokenstore.NewStore(storage).SaveUser(ctx, tt.cached))
			}
			service := newService(t, storage)

			app := NewAppModel(service)
			defer app.Close()

			app, _ = update(t, app, navigateMsg{route: DashboardRoute})
			assert.Equal(t, DashboardRoute, app.Route())
			assert.Empty(t, app.View(), "nothing is rendered before hydration")

			service.Session().Hydrate(ctx)
			app, _ = update(t, app, sessionChangedMsg{})
			assert.Equal(t, tt.wantRoute, app.Route())
			assert.Contains(t, app.View(), tt.wantView)
		})
	}
}

func TestAppModel_SubscriptionDeliversChanges(t *testing.T) {
	service := newService(t, tokenstore.NewMemoryStorage())
	app := NewAppModel(service)
	defer app.Close()

	service.Session().Hydrate(context.Background())

	done := make(chan tea.Msg, 1)
	go func() { done <- app.waitForChange()() }()

	select {
	case msg := <-done:
		assert.IsType(t, sessionChangedMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("session change was not delivered")
	}
}

func TestAppModel_SignInFlow(t *testing.T) {
	service := newService(t, tokenstore.NewMemoryStorage())
	service.Session().Hydrate(context.Background())

	app := NewAppModel(service)
	defer app.Close()

	app, _ = update(t, app, tea.WindowSizeMsg{Width: 100, Height: 40})
	app, _ = update(t, app, navigateMsg{route: DashboardRoute})
	require.Equal(t, LandingRoute, app.Route())

	// Empty form is rejected without a request
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, app.View(), "Please enter both mobile number and password")

	user, err := service.SignIn(context.Background(), loginForm("1234567890", "password123"))
	require.NoError(t, err)

	app, cmd = update(t, app, signedInMsg{user: user})
	assert.Equal(t, DashboardRoute, app.Route())
	assert.Contains(t, app.View(), "Asha Rao")
	assert.NotNil(t, cmd, "activating the dashboard loads the metrics")

	app, _ = update(t, app, metricsMsg{rng: app.dashboard.Range(), metrics: api.Metrics{"active_users": {Current: 120, Prev: 100, Pct: 20}}})
	assert.Contains(t, app.View(), "Active users")

	service.SignOut(context.Background())
	app, _ = update(t, app, signedOutMsg{})
	assert.Equal(t, LandingRoute, app.Route())
}

func TestDashboardModel_LoadMetrics(t *testing.T) {
	service := newService(t, tokenstore.NewMemoryStorage())
	ctx := context.Background()
	service.Session().Hydrate(ctx)
	_, err := service.SignIn(ctx, loginForm("1234567890", "password123"))
	require.NoError(t, err)

	dashboard := NewDashboardModel(service)
	assert.Equal(t, api.DefaultMetricsRange, dashboard.Range())
	assert.Nil(t, dashboard.Init())

	dashboard, cmd := dashboard.Activate()
	require.NotNil(t, cmd)
	again, second := dashboard.Activate()
	assert.Nil(t, second, "metrics are only requested once")

	msg := again.loadCmd()()
	loaded, ok := msg.(metricsMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)
	assert.Equal(t, 120.0, loaded.metrics["active_users"].Current)
	assert.Equal(t, 1520.5, loaded.metrics["revenue"].Current)

	next, _ := again.Update(loaded)
	assert.True(t, next.(DashboardModel).loaded)

	// A response for a range that is no longer selected is ignored
	stale, _ := next.(DashboardModel).Update(metricsMsg{rng: "24h", err: assert.AnError})
	assert.Empty(t, stale.(DashboardModel).err)
}

func loginForm(mobile, password string) validation.LoginForm {
	return validation.LoginForm{MobileNumber: mobile, Password: password}
}
