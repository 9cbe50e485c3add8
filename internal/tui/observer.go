package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// Sender is the part of *tea.Program the observer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards runner notifications to a running Bubbletea program.
type Observer struct {
	program Sender
	now     func() time.Time
}

// NewObserver wraps a program so it can be attached to the runner.
func NewObserver(program Sender) *Observer {
	return &Observer{program: program, now: time.Now}
}

// StepStarted implements engine.Observer.
func (o *Observer) StepStarted(index, _ int, name string) {
	o.program.Send(StepStartMsg{Index: index, Name: name, Time: o.now()})
}

// StepFinished implements engine.Observer.
func (o *Observer) StepFinished(_, _ int, result model.StepResult) {
	o.program.Send(StepCompleteMsg{Result: result})
}

// Done tells the program that no more steps will run.
func (o *Observer) Done() {
	o.program.Send(DoneMsg{})
}
