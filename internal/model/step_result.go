package model

import (
	"fmt"
	"time"
)

// Status is the classification of a step.
type Status string

const (
	// StatusPending indicates a step has not started yet.
	StatusPending Status = "pending"
	// StatusRunning indicates a step is actively executing.
	StatusRunning Status = "running"
	// StatusOK marks a step whose checks all passed.
	StatusOK Status = "ok"
	// StatusSkipped indicates a precondition was missing.
	StatusSkipped Status = "skip"
	// StatusFailed marks a failed check or an unexpected error.
	StatusFailed Status = "fail"
)

// IsTerminal reports whether the status is a final classification.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusOK, StatusSkipped, StatusFailed:
		return true
	default:
		return false
	}
}

// Label is the upper-case tag used in reports, e.g. "OK".
func (s Status) Label() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusSkipped:
		return "SKIP"
	case StatusFailed:
		return "FAIL"
	case StatusRunning:
		return "RUN"
	default:
		return "WAIT"
	}
}

// Outcome is what a step returns. The zero value carries no status and is
// treated as a failure by the runner.
type Outcome struct {
	Status Status
	Detail string
}

// Ok reports success with an optional detail.
func Ok(detail string) Outcome {
	return Outcome{Status: StatusOK, Detail: detail}
}

// Okf is Ok with a formatted detail.
func Okf(format string, args ...any) Outcome {
	return Ok(fmt.Sprintf(format, args...))
}

// Skip reports a missing precondition.
func Skip(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Detail: reason}
}

// Fail reports a failed check.
func Fail(reason string) Outcome {
	return Outcome{Status: StatusFailed, Detail: reason}
}

// Failf is Fail with a formatted reason.
func Failf(format string, args ...any) Outcome {
	return Fail(fmt.Sprintf(format, args...))
}

// StepResult captures the outcome of executing a single step.
type StepResult struct {
	Name      string
	Status    Status
	Detail    string
	Duration  time.Duration
	Timestamp time.Time
}

// Summary counts results per status.
type Summary struct {
	OK      int
	Failed  int
	Skipped int
}

// Summarize counts the supplied results.
func Summarize(results []StepResult) Summary {
	var summary Summary
	for _, result := range results {
		switch result.Status {
		case StatusOK:
			summary.OK++
		case StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	return summary
}

// Total is the number of counted results.
func (s Summary) Total() int {
	return s.OK + s.Failed + s.Skipped
}

// ExitCode is 1 when any step failed and 0 otherwise.
func (s Summary) ExitCode() int {
	if s.Failed > 0 {
		return 1
	}
	return 0
}
