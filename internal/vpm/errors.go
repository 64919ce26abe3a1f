package vpm

import (
	"errors"
	"fmt"
)

// Domain errors for the particle field engine.
var (
	// ErrCapacity indicates a particle addition beyond the preallocated maximum.
	ErrCapacity = errors.New("vpm: particle field at capacity")

	// ErrIncompatible indicates a kernel/viscous-scheme pairing that the
	// viscous scheme cannot operate under.
	ErrIncompatible = errors.New("vpm: kernel incompatible with viscous scheme")

	// ErrEvaluation indicates the velocity/Jacobian evaluator failed.
	ErrEvaluation = errors.New("vpm: velocity evaluation failed")

	// ErrInvalidState indicates a particle with invalid parameters
	// (non-positive core size, NaN/Inf components).
	ErrInvalidState = errors.New("vpm: invalid particle state")

	// ErrOutOfRange indicates a particle slot outside the active range.
	ErrOutOfRange = errors.New("vpm: particle slot out of range")
)

// StepError wraps an error with the time-step context it occurred in.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
