package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StepStartMsg:
		m.ensureStep(msg.Name)
		step := m.steps[msg.Name]
		step.Status = model.StatusRunning
		m.steps[msg.Name] = step
		m.current = msg.Name
		return m, nil
	case StepCompleteMsg:
		name := msg.Result.Name
		if name == "" {
			return m, nil
		}
		m.ensureStep(name)
		previouslyCompleted := m.steps[name].Status.IsTerminal()
		m.steps[name] = msg.Result
		if !previouslyCompleted {
			m.completed++
			if msg.Result.Status == model.StatusFailed {
				m.failed++
			}
		}
		if m.current == name {
			m.current = ""
		}
		return m, nil
	case DoneMsg:
		m.finished = true
		m.current = ""
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
