package models

import (
	"testing"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/stretchr/testify/assert"
)

func TestItems(t *testing.T) {
	items := Items(api.Metrics{
		"revenue":      {Current: 1520.5, Prev: 1600, Pct: -4.97},
		"active_users": {Current: 120, Prev: 100, Pct: 20},
	})

	assert.Len(t, items, 2)
	assert.Equal(t, "active_users", items[0].Name)
	assert.Equal(t, "Active users  120", items[0].Title())
	assert.Equal(t, "Revenue  1520.50", items[1].Title())
	assert.Contains(t, items[1].Description(), "previous 1600")
	assert.Contains(t, items[1].Description(), "-5.0%")
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{-3, "-3"},
		{2.5, "2.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}
