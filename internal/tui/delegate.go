package tui

import (
	"fmt"

	"github.com/brizzai/dishom-client/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// newMetricDelegate returns a list.DefaultDelegate with custom update and help functions.
func newMetricDelegate(keys *delegateKeyMap) list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.UpdateFunc = func(msg tea.Msg, m *list.Model) tea.Cmd {
		item, ok := m.SelectedItem().(models.MetricItem)
		if !ok {
			return nil
		}

		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch {
			case key.Matches(msg, keys.compare):
				return m.NewStatusMessage(statusMessageStyle(compareText(item)))
			}
		}
		return nil
	}

	help := []key.Binding{keys.compare}

	d.ShortHelpFunc = func() []key.Binding {
		return help
	}

	d.FullHelpFunc = func() [][]key.Binding {
		return [][]key.Binding{help}
	}

	return d
}

func compareText(item models.MetricItem) string {
	diff := item.Metric.Current - item.Metric.Prev
	return fmt.Sprintf("%s: %s now, %s before (%+.1f%%, %s)",
		item.Label(),
		models.FormatNumber(item.Metric.Current),
		models.FormatNumber(item.Metric.Prev),
		item.Metric.Pct,
		signed(diff),
	)
}

func signed(v float64) string {
	if v > 0 {
		return "+" + models.FormatNumber(v)
	}
	return models.FormatNumber(v)
}

// delegateKeyMap holds key bindings for list item actions.
type delegateKeyMap struct {
	compare key.Binding
}

// ShortHelp returns additional short help entries for the delegate.
func (d delegateKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		d.compare,
	}
}

// FullHelp returns additional full help entries for the delegate.
func (d delegateKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			d.compare,
		},
	}
}

// newDelegateKeyMap creates a new delegateKeyMap with default bindings.
func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		compare: key.NewBinding(
			key.WithKeys("enter", "c"),
			key.WithHelp("enter", "Compare with previous range"),
		),
	}
}
