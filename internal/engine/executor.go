package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/shopflow/internal/logger"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
	shopflowerrors "github.com/alexisbeaulieu97/shopflow/pkg/errors"
)

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Logger    *logger.Logger
	Observers []Observer
	// Now is the clock used for timestamps and durations.
	Now func() time.Time
}

// Runner executes steps one after another and keeps the ordered result log.
// It is not safe for concurrent use.
type Runner struct {
	log       *logger.Logger
	observers Observers
	now       func() time.Time
	results   []model.StepResult
}

// NewRunner creates a Runner. A step logging observer is always attached.
func NewRunner(opts RunnerOptions) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	observers := append(Observers{NewLogObserver(opts.Logger)}, opts.Observers...)
	return &Runner{log: opts.Logger, observers: observers, now: now}
}

// Run executes a single step and appends its result.
func (r *Runner) Run(ctx context.Context, name string, fn StepFunc) model.StepResult {
	return r.run(ctx, len(r.results), len(r.results)+1, Step{Name: name, Run: fn})
}

// RunAll executes every step in order. A failing step never stops the run.
func (r *Runner) RunAll(ctx context.Context, steps []Step) []model.StepResult {
	offset := len(r.results)
	total := offset + len(steps)
	for i, step := range steps {
		r.run(ctx, offset+i, total, step)
	}
	return r.Results()
}

// Results returns a copy of the result log.
func (r *Runner) Results() []model.StepResult {
	return append([]model.StepResult(nil), r.results...)
}

// Summary counts the results recorded so far.
func (r *Runner) Summary() model.Summary {
	return model.Summarize(r.results)
}

func (r *Runner) run(ctx context.Context, index, total int, step Step) model.StepResult {
	r.observers.StepStarted(index, total, step.Name)

	start := r.now()
	outcome := execute(ctx, step)
	result := model.StepResult{
		Name:      step.Name,
		Status:    outcome.Status,
		Detail:    outcome.Detail,
		Duration:  r.now().Sub(start),
		Timestamp: start,
	}

	r.results = append(r.results, result)
	r.observers.StepFinished(index, total, result)
	return result
}

// execute calls the step, converting a panic or a missing classification
// into a failure.
func execute(ctx context.Context, step Step) (outcome model.Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err := shopflowerrors.NewExecutionError(step.Name, fmt.Errorf("%v", recovered))
			outcome = model.Fail(err.Error())
		}
	}()

	if step.Run == nil {
		return model.Fail(shopflowerrors.NewExecutionError(step.Name, fmt.Errorf("step has no implementation")).Error())
	}

	outcome = step.Run(ctx)
	if !outcome.Status.IsTerminal() {
		err := shopflowerrors.NewExecutionError(step.Name, fmt.Errorf("step returned status %q", outcome.Status))
		return model.Fail(err.Error())
	}
	return outcome
}
