package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/models"
	"github.com/brizzai/dishom-client/internal/requester"
	"github.com/brizzai/dishom-client/internal/validation"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	mobileInput = iota
	passwordInput
)

// LandingKeyMap holds key bindings for the sign in form
type LandingKeyMap struct {
	next   key.Binding
	prev   key.Binding
	submit key.Binding
	quit   key.Binding
}

func newLandingKeyMap() *LandingKeyMap {
	return &LandingKeyMap{
		next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Sign in"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "Quit"),
		),
	}
}

// signedInMsg is sent once the user is stored in the session
type signedInMsg struct {
	user models.User
}

// signInFailedMsg carries the reason a sign in attempt failed
type signInFailedMsg struct {
	err error
}

// LandingPageModel is the public landing page with the sign in form
type LandingPageModel struct {
	service *auth.Service
	keys    *LandingKeyMap
	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	busy    bool
	err     string
	width   int
	height  int
}

// NewLandingPageModel creates the landing page with an empty form
func NewLandingPageModel(service *auth.Service) LandingPageModel {
	mobile := textinput.New()
	mobile.Placeholder = "10 digit mobile number"
	mobile.CharLimit = 10
	mobile.Width = 30
	mobile.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 30

	return LandingPageModel{
		service: service,
		keys:    newLandingKeyMap(),
		inputs:  []textinput.Model{mobile, password},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Reset clears the form, the page is reused after a sign out
func (m LandingPageModel) Reset() LandingPageModel {
	fresh := NewLandingPageModel(m.service)
	fresh.width, fresh.height = m.width, m.height
	return fresh
}

// Init initializes the model
func (m LandingPageModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LandingPageModel) form() validation.LoginForm {
	return validation.LoginForm{
		MobileNumber: strings.TrimSpace(m.inputs[mobileInput].Value()),
		Password:     m.inputs[passwordInput].Value(),
	}
}

func (m LandingPageModel) setFocus(i int) (LandingPageModel, tea.Cmd) {
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
			continue
		}
		m.inputs[j].Blur()
	}
	return m, cmd
}

func (m LandingPageModel) submit() (LandingPageModel, tea.Cmd) {
	form := m.form()
	if err := validation.Validate(form); err != nil {
		m.err = err.Error()
		return m, nil
	}

	m.busy = true
	m.err = ""
	service := m.service
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		user, err := service.SignIn(context.Background(), form)
		if err != nil {
			return signInFailedMsg{err: err}
		}
		return signedInMsg{user: user}
	})
}

// Update handles messages for the landing page
func (m LandingPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.next):
			return m.setFocus(m.focus + 1)
		case key.Matches(msg, m.keys.prev):
			return m.setFocus(m.focus - 1)
		case key.Matches(msg, m.keys.submit):
			if m.focus < len(m.inputs)-1 {
				return m.setFocus(m.focus + 1)
			}
			return m.submit()
		}

	case signInFailedMsg:
		m.busy = false
		m.err = errorText(msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View renders the landing page
func (m LandingPageModel) View() string {
	title := titleStyle.Render("Dishom")
	subtitle := editHeaderStyle.Render("Sign in to continue")

	fields := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Mobile number"), m.inputs[mobileInput].View()),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Password"), m.inputs[passwordInput].View()),
	)

	status := ""
	switch {
	case m.busy:
		status = m.spinner.View() + " Signing in..."
	case m.err != "":
		status = errorMessageStyle(m.err)
	}

	help := helpStyle.Render("tab next field • enter sign in • esc quit")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		subtitle,
		"",
		fields,
		"",
		status,
		"",
		help,
	)

	if m.width > 0 {
		content = lipgloss.Place(m.width-4, m.height-2, lipgloss.Center, lipgloss.Center, content)
	}
	return docStyle.Render(content)
}

// errorText renders a flow error for the user
func errorText(err error) string {
	var reqErr *requester.Error
	if errors.As(err, &reqErr) {
		return reqErr.Message()
	}
	return err.Error()
}
