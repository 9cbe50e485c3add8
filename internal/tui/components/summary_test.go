package components

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummaryView(t *testing.T) {
	t.Parallel()

	t.Run("renders empty summary", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "", NewSummary(SummaryData{}).View())
	})

	t.Run("renders progress and current step", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 28, Completed: 5, Current: "Catalog product"}).View()
		require.Contains(t, view, "Steps: 5/28 completed, 0 failed")
		require.Contains(t, view, "Running: Catalog product")
	})

	t.Run("renders clean finish", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 3, Completed: 3, Finished: true}).View()
		require.Contains(t, view, "Run finished without failures")
		require.NotContains(t, view, "Running:")
	})

	t.Run("renders finish with failures", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 3, Completed: 3, Failed: 2, Finished: true}).View()
		require.Contains(t, view, "3/3 completed, 2 failed")
		require.Contains(t, view, "Run finished with failures")
	})

	t.Run("renders partial completion when finished", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 10, Completed: 7, Finished: true}).View()
		require.Contains(t, view, "Run finished with pending steps")
	})

	t.Run("cancelled wins over finished", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 10, Completed: 5, Finished: true, Cancelled: true}).View()
		require.Contains(t, view, "Run cancelled")
		require.NotContains(t, view, "Run finished")
	})
}
