package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/charmbracelet/lipgloss"
)

var (
	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#56FF4E"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// MetricItem wraps a dashboard metric for display in the list
// Implements list.Item
type MetricItem struct {
	Name   string
	Metric api.Metric
}

// Items converts metrics into list items ordered by name
func Items(metrics api.Metrics) []MetricItem {
	items := make([]MetricItem, 0, len(metrics))
	for _, name := range metrics.Names() {
		items = append(items, MetricItem{Name: name, Metric: metrics[name]})
	}
	return items
}

// Label turns active_users into Active users
func (i MetricItem) Label() string {
	label := strings.ReplaceAll(i.Name, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func (i MetricItem) Title() string {
	return fmt.Sprintf("%s  %s", i.Label(), FormatNumber(i.Metric.Current))
}

func (i MetricItem) Description() string {
	change := fmt.Sprintf("%+.1f%%", i.Metric.Pct)
	switch {
	case i.Metric.Pct > 0:
		change = upStyle.Render(change)
	case i.Metric.Pct < 0:
		change = downStyle.Render(change)
	}
	return fmt.Sprintf("previous %s  %s", FormatNumber(i.Metric.Prev), change)
}

func (i MetricItem) FilterValue() string {
	return i.Name
}

// FormatNumber drops the fraction of whole numbers
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
