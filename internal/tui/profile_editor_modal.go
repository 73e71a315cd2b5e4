package tui

// ProfileEditorModal provides a modal input for editing the full name.
import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ProfileEditorModal holds the input and error state for the modal.
type ProfileEditorModal struct {
	input textinput.Model
	err   string
}

// NewProfileEditorModal creates a modal with a focused input holding initial.
func NewProfileEditorModal(initial string) ProfileEditorModal {
	ti := textinput.New()
	ti.Placeholder = "Full name"
	ti.CharLimit = 120
	ti.Width = 40
	ti.SetValue(initial)
	ti.Focus()

	return ProfileEditorModal{input: ti}
}

// Init returns the initial command for the modal (cursor blink).
func (m ProfileEditorModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the modal, including key events and errors.
func (m ProfileEditorModal) Update(msg tea.Msg) (ProfileEditorModal, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.input.Focused() {
			cmd = m.input.Focus()
			cmds = append(cmds, cmd)
		}
	case profileSavedMsg:
		if msg.err != nil {
			m.err = errorText(msg.err)
		}
		return m, nil
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// FullName returns the current value of the input.
func (m ProfileEditorModal) FullName() string {
	return m.input.Value()
}

// View renders the modal UI.
func (m ProfileEditorModal) View(title string) string {
	status := ""
	if m.err != "" {
		status = errorMessageStyle(m.err) + "\n\n"
	}
	return fmt.Sprintf(
		"%s\n\n%s\n\n%s%s",
		editHeaderStyle.Render(title),
		m.input.View(),
		status,
		helpStyle.Render("(ctrl+s to save, esc to cancel)"),
	) + "\n\n"
}
