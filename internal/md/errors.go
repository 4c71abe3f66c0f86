package md

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfig indicates a run parameter outside its valid range.
	ErrConfig = errors.New("md: invalid configuration")

	// ErrCoincident indicates two particles at zero separation, for which
	// the pair force is undefined.
	ErrCoincident = errors.New("md: coincident particles (zero separation)")

	// ErrNumeric indicates NaN or Inf appeared in the particle state.
	ErrNumeric = errors.New("md: numeric instability (NaN or Inf detected)")

	// ErrDimensionMismatch indicates position/velocity/force slices of
	// unequal length.
	ErrDimensionMismatch = errors.New("md: position/velocity/force length mismatch")
)

// StepError wraps an error with the step at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
