package components

import (
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// StepEntry represents a single step for rendering.
type StepEntry struct {
	Name   string
	Result model.StepResult
}

// StepList renders a list of steps with their current status.
type StepList struct {
	entries []StepEntry
}

// NewStepList constructs a step list component. Names missing from steps
// render as pending.
func NewStepList(order []string, steps map[string]model.StepResult) StepList {
	entries := make([]StepEntry, 0, len(order))
	for _, name := range order {
		result, ok := steps[name]
		if !ok {
			result = model.StepResult{Name: name, Status: model.StatusPending}
		}
		entries = append(entries, StepEntry{Name: name, Result: result})
	}
	return StepList{entries: entries}
}

// Entries returns the ordered step entries.
func (s StepList) Entries() []StepEntry {
	clone := make([]StepEntry, len(s.entries))
	copy(clone, s.entries)
	return clone
}
