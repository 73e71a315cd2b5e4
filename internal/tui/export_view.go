package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"
)

// MetricsSnapshot is the exported form of the dashboard metrics
type MetricsSnapshot struct {
	Range      string                `yaml:"range"`
	ExportedAt time.Time             `yaml:"exported_at"`
	Metrics    map[string]api.Metric `yaml:"metrics"`
}

// ExportView handles prompting for a filename and exporting metrics
type ExportView struct {
	rng          string
	metrics      api.Metrics
	textInput    textinput.Model
	err          error
	width        int
	height       int
	exportStatus string
	Success      bool
}

// NewExportView creates a new export view
func NewExportView(rng string, metrics api.Metrics) ExportView {
	ti := textinput.New()
	ti.Placeholder = "metrics.yaml"
	ti.Focus()
	ti.Width = 40

	return ExportView{
		rng:       rng,
		metrics:   metrics,
		textInput: ti,
	}
}

// Init initializes the export view
func (m ExportView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the export view
func (m ExportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return BackToDashboardMsg{} }
		case "enter":
			if m.textInput.Value() == "" {
				m.exportStatus = "Please enter a filename"
				return m, nil
			}

			filename := m.textInput.Value()
			if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
				filename += ".yaml"
			}

			snapshot := MetricsSnapshot{
				Range:      m.rng,
				ExportedAt: time.Now().UTC().Truncate(time.Second),
				Metrics:    m.metrics,
			}
			if err := ExportMetricsToYamlFile(snapshot, filename); err != nil {
				m.err = err
				m.exportStatus = fmt.Sprintf("Error exporting: %v", err)
				return m, nil
			}

			m.Success = true
			m.exportStatus = completeMessageStyle(fmt.Sprintf("Successfully exported to %s", filename))
			// Back to the dashboard after a second
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return BackToDashboardMsg{}
			})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the export view
func (m ExportView) View() string {
	var sb strings.Builder

	// Calculate vertical centering
	verticalPadding := (m.height - 6) / 2
	for i := 0; i < verticalPadding; i++ {
		sb.WriteString("\n")
	}

	title := titleStyle.Render("Export Metrics")
	sb.WriteString(centerText(title, m.width))
	sb.WriteString("\n\n")

	prompt := fmt.Sprintf("Enter filename to export the %s metrics:", m.rng)
	sb.WriteString(centerText(prompt, m.width))
	sb.WriteString("\n")

	input := m.textInput.View()
	sb.WriteString(centerText(input, m.width))
	sb.WriteString("\n\n")

	if m.exportStatus != "" {
		sb.WriteString(centerText(m.exportStatus, m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText("(esc) Back to dashboard | (enter) Export", m.width))

	return sb.String()
}

// BackToDashboardMsg signals to go back to the dashboard
type BackToDashboardMsg struct{}

// ExportMetricsToYamlFile writes a metrics snapshot to filename
func ExportMetricsToYamlFile(snapshot MetricsSnapshot, filename string) error {
	if snapshot.Metrics == nil {
		snapshot.Metrics = map[string]api.Metric{}
	}

	yamlData, err := yaml.Marshal(snapshot)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, yamlData, 0o644)
}

// Helper function to center text horizontally
func centerText(text string, width int) string {
	if width <= len(text) {
		return text
	}

	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
