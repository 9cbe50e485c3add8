package engine

import (
	"context"

	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// StepFunc is a step closed over its environment.
type StepFunc func(ctx context.Context) model.Outcome

// Step is one named entry of a run.
type Step struct {
	Name string
	Run  StepFunc
}

// Observer is notified synchronously around every step. Implementations
// must not block.
type Observer interface {
	StepStarted(index, total int, name string)
	StepFinished(index, total int, result model.StepResult)
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

// StepStarted implements Observer.
func (o Observers) StepStarted(index, total int, name string) {
	for _, observer := range o {
		if observer != nil {
			observer.StepStarted(index, total, name)
		}
	}
}

// StepFinished implements Observer.
func (o Observers) StepFinished(index, total int, result model.StepResult) {
	for _, observer := range o {
		if observer != nil {
			observer.StepFinished(index, total, result)
		}
	}
}
