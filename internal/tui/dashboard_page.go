package tui

import (
	"context"
	"strings"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/models"
	tuimodels "github.com/brizzai/dishom-client/internal/tui/models"
	"github.com/brizzai/dishom-client/internal/validation"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MetricRanges are the ranges the dashboard cycles through
var MetricRanges = []string{"24h", api.DefaultMetricsRange, "30d"}

// profileHeight is the space kept above the metrics list for the profile box
const profileHeight = 9

// dashboardKeyMap holds key bindings for the dashboard actions.
type dashboardKeyMap struct {
	refresh     key.Binding
	cycleRange  key.Binding
	editProfile key.Binding
	export      key.Binding
	save        key.Binding
	cancel      key.Binding
	logout      key.Binding
	quit        key.Binding
}

func newDashboardKeyMap() *dashboardKeyMap {
	return &dashboardKeyMap{
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		cycleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Change range"),
		),
		editProfile: key.NewBinding(
			key.WithKeys("E", "e"),
			key.WithHelp("e", "Edit name"),
		),
		export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export"),
		),
		save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
		logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log out"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// metricsMsg carries the metrics for a range
type metricsMsg struct {
	rng     string
	metrics api.Metrics
	err     error
}

// profileSavedMsg reports the outcome of a profile update
type profileSavedMsg struct {
	user models.User
	err  error
}

// signedOutMsg is sent after the stored credentials were cleared
type signedOutMsg struct{}

// OpenExportMsg asks the app to open the export page for a metrics snapshot
type OpenExportMsg struct {
	Range   string
	Metrics api.Metrics
}

// DashboardModel shows the signed in user and the platform metrics
type DashboardModel struct {
	service   *auth.Service
	keys      *dashboardKeyMap
	list      list.Model
	spinner   spinner.Model
	rangeIdx  int
	metrics   api.Metrics
	loading   bool
	loaded    bool
	err       string
	editing   bool
	editModal ProfileEditorModal
}

// NewDashboardModel creates the dashboard for the default range
func NewDashboardModel(service *auth.Service) DashboardModel {
	keys := newDashboardKeyMap()

	l := list.New(nil, newMetricDelegate(newDelegateKeyMap()), 0, 0)
	l.Title = "Metrics"
	l.SetFilteringEnabled(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			keys.refresh,
			keys.cycleRange,
			keys.editProfile,
			keys.export,
			keys.logout,
		}
	}

	rangeIdx := 0
	for i, rng := range MetricRanges {
		if rng == api.DefaultMetricsRange {
			rangeIdx = i
		}
	}

	return DashboardModel{
		service:  service,
		keys:     keys,
		list:     l,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		rangeIdx: rangeIdx,
	}
}

// Range returns the selected metrics range
func (m DashboardModel) Range() string {
	return MetricRanges[m.rangeIdx]
}

// Activate loads the metrics the first time the page is shown
func (m DashboardModel) Activate() (DashboardModel, tea.Cmd) {
	if m.loaded || m.loading {
		return m, nil
	}
	return m.load()
}

func (m DashboardModel) load() (DashboardModel, tea.Cmd) {
	m.loading = true
	m.err = ""
	return m, tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m DashboardModel) loadCmd() tea.Cmd {
	client := m.service.API()
	rng := m.Range()
	return func() tea.Msg {
		res := client.DashboardMetrics(context.Background(), rng)
		if !res.OK() {
			return metricsMsg{rng: rng, err: res.Err}
		}
		return metricsMsg{rng: rng, metrics: *res.Data}
	}
}

func (m DashboardModel) resize(width, height int) (DashboardModel, tea.Cmd) {
	h, v := docStyle.GetFrameSize()
	m.list.SetSize(width-h, max(height-v-profileHeight, 0))
	return m, nil
}

func (m DashboardModel) saveProfile(fullName string) tea.Cmd {
	service := m.service
	user := service.Session().User()
	profile := user.Profile()
	form := validation.ProfileForm{
		FullName:     strings.TrimSpace(fullName),
		Email:        user.Email(),
		Phone:        user.MobileNumber(),
		State:        profile.State,
		District:     profile.District,
		Pincode:      profile.Pincode,
		CurrentClass: profile.CurrentClass,
		Village:      profile.Village,
	}
	return func() tea.Msg {
		saved, err := service.SaveProfile(context.Background(), form, nil)
		return profileSavedMsg{user: saved, err: err}
	}
}

// Update handles messages for the metrics list and the edit modal.
// Init returns the initial command for the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case metricsMsg:
		if msg.rng != m.Range() {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, nil
		}
		m.loaded = true
		m.metrics = msg.metrics
		items := tuimodels.Items(msg.metrics)
		listItems := make([]list.Item, len(items))
		for i, item := range items {
			listItems[i] = item
		}
		cmd := m.list.SetItems(listItems)
		return m, cmd

	case profileSavedMsg:
		if msg.err != nil {
			var cmd tea.Cmd
			m.editModal, cmd = m.editModal.Update(msg)
			return m, cmd
		}
		m.editing = false
		cmd := m.list.NewStatusMessage(completeMessageStyle("Profile updated"))
		return m, cmd

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height)
	}

	if m.editing {
		return m.handleEditModeUpdate(msg)
	}
	return m.handleListModeUpdate(msg)
}

// handleEditModeUpdate handles messages when in edit mode
func (m DashboardModel) handleEditModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.save):
			return m, m.saveProfile(m.editModal.FullName())
		case key.Matches(msg, m.keys.cancel):
			m.editing = false
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.editModal, cmd = m.editModal.Update(msg)
	return m, cmd
}

// handleListModeUpdate handles messages when in list mode
func (m DashboardModel) handleListModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			return m.load()
		case key.Matches(msg, m.keys.cycleRange):
			m.rangeIdx = (m.rangeIdx + 1) % len(MetricRanges)
			return m.load()
		case key.Matches(msg, m.keys.editProfile):
			m.editing = true
			m.editModal = NewProfileEditorModal(m.service.Session().User().FullName())
			return m, m.editModal.Init()
		case key.Matches(msg, m.keys.export):
			if !m.loaded {
				cmd := m.list.NewStatusMessage(statusMessageStyle("Nothing to export yet"))
				return m, cmd
			}
			snapshot := OpenExportMsg{Range: m.Range(), Metrics: m.metrics}
			return m, func() tea.Msg { return snapshot }
		case key.Matches(msg, m.keys.logout):
			service := m.service
			return m, func() tea.Msg {
				service.SignOut(context.Background())
				return signedOutMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m DashboardModel) profileView() string {
	user := m.service.Session().User()
	profile := user.Profile()

	row := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
	}

	rows := []string{
		titleStyle.Render(user.FullName()),
		row("Mobile", user.MobileNumber()),
		row("Email", user.Email()),
		row("Location", strings.Join(nonEmpty(profile.Village, profile.District, profile.State, profile.Pincode), ", ")),
		row("Class", profile.CurrentClass),
	}
	if profile.ProfileImage != "" {
		rows = append(rows, row("Picture", m.service.API().ResolveMediaURL(profile.ProfileImage)))
	}
	return profileBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// View renders the profile, the metrics list and the modal when editing
func (m DashboardModel) View() string {
	if m.editing {
		return docStyle.Render(m.editModal.View("Edit full name"))
	}

	status := helpStyle.Render("Range " + m.Range())
	switch {
	case m.loading:
		status = m.spinner.View() + " Loading metrics for " + m.Range()
	case m.err != "":
		status = errorMessageStyle(m.err)
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.profileView(),
		status,
		m.list.View(),
	))
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
