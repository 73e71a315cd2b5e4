package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"

	"github.com/tidwall/gjson"
)

const (
	MetricsPath = "/api/dashboard/metrics/"
	// DefaultMetricsRange matches the backend default
	DefaultMetricsRange = "7d"
)

// Metric compares a value over the current range with the previous one
type Metric struct {
	Current float64 `json:"current"`
	Prev    float64 `json:"prev"`
	Pct     float64 `json:"pct"`
}

// UnmarshalJSON accepts numbers and numeric strings, decimal sums are
// rendered as strings by the backend
func (m *Metric) UnmarshalJSON(data []byte) error {
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return errors.New("metric is not an object")
	}
	m.Current = result.Get("current").Float()
	m.Prev = result.Get("prev").Float()
	m.Pct = result.Get("pct").Float()
	return nil
}

// Metrics is keyed by metric name, e.g. active_users
type Metrics map[string]Metric

// Names returns the metric names in a stable order
func (m Metrics) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DashboardMetrics fetches the platform metrics for a range like 24h or 7d
func (c *Client) DashboardMetrics(ctx context.Context, rng string) Result[Metrics] {
	if rng == "" {
		rng = DefaultMetricsRange
	}
	path := MetricsPath + "?" + url.Values{"range": {rng}}.Encode()
	return decode[Metrics](c.call(ctx, http.MethodGet, path, nil, true))
}
