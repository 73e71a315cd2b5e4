package tui

import (
	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/guard"
	"github.com/brizzai/dishom-client/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Routes of the terminal dashboard. Everything but the landing route needs a
// signed in user.
const (
	LandingRoute   = guard.LandingRoute
	DashboardRoute = "/dashboard"
	ExportRoute    = "/dashboard/export"
)

// navigateMsg asks the app to switch to a route, subject to the guard
type navigateMsg struct {
	route string
}

// sessionChangedMsg is delivered after every session update
type sessionChangedMsg struct{}

// AppModel is the main application model that manages page switching
type AppModel struct {
	service     *auth.Service
	session     *session.Session
	changes     chan struct{}
	unsubscribe func()

	landing    LandingPageModel
	dashboard  DashboardModel
	exportView ExportView
	route      string

	width  int
	height int
}

// NewAppModel creates the app. It starts on the dashboard, which renders
// nothing until the session is hydrated.
func NewAppModel(service *auth.Service) AppModel {
	changes := make(chan struct{}, 1)
	unsubscribe := service.Session().Subscribe(func(session.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return AppModel{
		service:     service,
		session:     service.Session(),
		changes:     changes,
		unsubscribe: unsubscribe,
		landing:     NewLandingPageModel(service),
		dashboard:   NewDashboardModel(service),
		route:       DashboardRoute,
	}
}

// Init initializes the AppModel
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.landing.Init(),
		m.waitForChange(),
		func() tea.Msg { return navigateMsg{route: DashboardRoute} },
	)
}

// Close stops listening to the session
func (m AppModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Route returns the active route
func (m AppModel) Route() string {
	return m.route
}

func (m AppModel) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return sessionChangedMsg{}
	}
}

// navigate switches to route. Protected routes stay blank while the session
// is hydrating and fall back to the landing page without a user.
func (m AppModel) navigate(route string) (AppModel, tea.Cmd) {
	if route == LandingRoute {
		m.route = route
		return m, m.landing.Init()
	}

	switch guard.Decide(m.session.State()) {
	case guard.Pending:
		m.route = route
		return m, nil
	case guard.Redirect:
		m.route = LandingRoute
		return m, m.landing.Init()
	}

	m.route = route
	if route == DashboardRoute {
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Activate()
		return m, cmd
	}
	return m, nil
}

// Update handles app-level messages and delegates to the appropriate page model
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case navigateMsg:
		return m.navigate(msg.route)

	case sessionChangedMsg:
		target := m.route
		if target == LandingRoute && guard.Decide(m.session.State()) == guard.Allow {
			target = DashboardRoute
		}
		next, cmd := m.navigate(target)
		return next, tea.Batch(cmd, m.waitForChange())

	case signedInMsg:
		m.landing = m.landing.Reset()
		return m.navigate(DashboardRoute)

	case signedOutMsg:
		m.dashboard = NewDashboardModel(m.service)
		if m.width > 0 {
			m.dashboard, _ = m.dashboard.resize(m.width, m.height)
		}
		return m.navigate(LandingRoute)

	case OpenExportMsg:
		m.exportView = NewExportView(msg.Range, msg.Metrics)
		m.exportView.width, m.exportView.height = m.width, m.height
		next, _ := m.navigate(ExportRoute)
		return next, next.exportView.Init()

	case BackToDashboardMsg:
		return m.navigate(DashboardRoute)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		var tempModel tea.Model
		m.width, m.height = msg.Width, msg.Height

		// Update all models with the window size
		tempModel, cmd = m.landing.Update(msg)
		m.landing = tempModel.(LandingPageModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.dashboard.Update(msg)
		m.dashboard = tempModel.(DashboardModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	// Delegate message to the active page
	var cmd tea.Cmd
	var tempModel tea.Model
	switch m.route {
	case LandingRoute:
		tempModel, cmd = m.landing.Update(msg)
		m.landing = tempModel.(LandingPageModel)
		cmds = append(cmds, cmd)
	case DashboardRoute:
		tempModel, cmd = m.dashboard.Update(msg)
		m.dashboard = tempModel.(DashboardModel)
		cmds = append(cmds, cmd)
	case ExportRoute:
		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the active page. Protected pages render nothing unless the
// guard allows them.
func (m AppModel) View() string {
	if m.route != LandingRoute && guard.Decide(m.session.State()) != guard.Allow {
		return ""
	}

	switch m.route {
	case LandingRoute:
		return m.landing.View()
	case ExportRoute:
		return m.exportView.View()
	default:
		return m.dashboard.View()
	}
}
