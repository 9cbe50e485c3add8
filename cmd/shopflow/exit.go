package main

import "fmt"

const (
	exitFailure     = 1
	exitConfigError = 2
)

// exitError carries the process exit code out of a command. A nil cause
// means the command already reported everything it had to say.
type exitError struct {
	code  int
	cause error
}

func newExitError(code int, cause error) error {
	return &exitError{code: code, cause: cause}
}

func (e *exitError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.cause.Error()
}

func (e *exitError) Unwrap() error {
	return e.cause
}
