package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// StepStartMsg indicates a step has started executing.
type StepStartMsg struct {
	Index int
	Name  string
	Time  time.Time
}

// StepCompleteMsg reports that a step has finished execution.
type StepCompleteMsg struct {
	Result model.StepResult
}

// DoneMsg signals that the run is over and the program should exit.
type DoneMsg struct{}

// Model contains the Bubbletea state for the run progress view.
type Model struct {
	title     string
	steps     map[string]model.StepResult
	order     []string
	current   string
	total     int
	completed int
	failed    int
	finished  bool
	cancelled bool
}

// NewModel constructs a model tracking the named steps in order.
func NewModel(title string, names []string) Model {
	m := Model{
		title: title,
		steps: make(map[string]model.StepResult, len(names)),
		order: make([]string, 0, len(names)),
	}
	for _, name := range names {
		m.ensureStep(name)
	}
	return m
}

// Init implements tea.Model. The model is driven entirely by runner messages.
func (m Model) Init() tea.Cmd {
	return nil
}

// TotalSteps returns the total number of steps tracked by the model.
func (m Model) TotalSteps() int {
	return m.total
}

// CompletedSteps returns the number of completed steps.
func (m Model) CompletedSteps() int {
	return m.completed
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

func (m *Model) ensureStep(name string) {
	if name == "" {
		return
	}
	if _, exists := m.steps[name]; !exists {
		m.steps[name] = model.StepResult{Name: name, Status: model.StatusPending}
		m.order = append(m.order, name)
		m.total++
	}
}
