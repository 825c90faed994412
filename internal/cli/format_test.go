package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFormatYen(t *testing.T) {
	tests := []struct {
		want   string
		amount int64
	}{
		{amount: 0, want: "¥0"},
		{amount: 999, want: "¥999"},
		{amount: 1_030_000, want: "¥1,030,000"},
		{amount: -80_000, want: "-¥80,000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatYen(tt.amount))
		})
	}
}

func TestFormatManYen(t *testing.T) {
	assert.Equal(t, "103万円", FormatManYen(1_030_000))
	assert.Equal(t, "150万円", FormatManYen(1_500_000))
	assert.Equal(t, "103.5万円", FormatManYen(1_035_000))
	assert.Equal(t, "-8万円", FormatManYen(-80_000))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "48.8%", FormatPercent(48.78))
	assert.Equal(t, "100.0%", FormatPercent(100))
}

func TestGauge(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		filled  int
	}{
		{name: "empty", percent: 0, filled: 0},
		{name: "half", percent: 50, filled: 5},
		{name: "full", percent: 100, filled: 10},
		{name: "clamped high", percent: 180, filled: 10},
		{name: "clamped low", percent: -5, filled: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Gauge(tt.percent, 10)
			assert.Equal(t, 12, utf8.RuneCountInString(g))
			assert.Equal(t, tt.filled, strings.Count(g, "█"))
		})
	}

	assert.Empty(t, Gauge(50, 0))
}
