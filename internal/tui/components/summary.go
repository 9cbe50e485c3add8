package components

import (
	"fmt"
	"strings"
)

// SummaryData aggregates counts for rendering summaries.
type SummaryData struct {
	Total     int
	Completed int
	Failed    int
	Current   string
	Finished  bool
	Cancelled bool
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string

	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Steps: %d/%d completed, %d failed", s.data.Completed, s.data.Total, s.data.Failed))
	}

	if s.data.Current != "" && !s.data.Finished {
		lines = append(lines, fmt.Sprintf("Running: %s", s.data.Current))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Run cancelled")
	case s.data.Finished && s.data.Total > 0:
		switch {
		case s.data.Completed < s.data.Total:
			lines = append(lines, "Run finished with pending steps")
		case s.data.Failed > 0:
			lines = append(lines, "Run finished with failures")
		default:
			lines = append(lines, "Run finished without failures")
		}
	}

	return strings.Join(lines, "\n")
}
