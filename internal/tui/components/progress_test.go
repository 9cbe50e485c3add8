package components

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressView(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		completed int
		label     string
	}{
		{"zero total", 0, 0, "0/0"},
		{"partial", 28, 14, "14/28"},
		{"complete", 28, 28, "28/28"},
		{"beyond total keeps the count", 3, 5, "5/3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			view := NewProgress(tt.total).View(tt.completed)
			require.Contains(t, view, tt.label)
			require.Greater(t, len(view), len(tt.label), "expected a bar next to the label")
		})
	}
}

func TestNewProgressKeepsTotal(t *testing.T) {
	t.Parallel()

	p := NewProgress(10)
	require.Equal(t, 10, p.total)
	require.Equal(t, 40, p.bar.Width)
}
