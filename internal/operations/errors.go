package operations

import (
	"errors"
	"fmt"
)

// StepError ties a failure to the pipeline step that produced it.
// The cause keeps its own type, so exit codes still resolve through Unwrap.
type StepError struct {
	Step  string
	Cause error
}

// Error implements the error interface
func (e *StepError) Error() string {
	if e == nil {
		return "unknown step error"
	}
	return fmt.Sprintf("step %s: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// FailedStep returns the step a pipeline error came from, or "" when err
// did not come from a step
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
