package integrate

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBounds  = errors.New("integrate: invalid bounds")
	ErrInvalidOptions = errors.New("integrate: invalid options")
	ErrNonFinite      = errors.New("integrate: non-finite function value")
	ErrNoConvergence  = errors.New("integrate: no convergence")
)

// ConvergenceError is returned when the budget runs out before the
// requested tolerance is met. It carries the best estimate so far.
type ConvergenceError struct {
	Estimate float64
	AbsErr   float64
	Evals    int
	Reason   string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v: %s (estimate=%.12g abserr=%.3g evals=%d)", ErrNoConvergence, e.Reason, e.Estimate, e.AbsErr, e.Evals)
}

func (e *ConvergenceError) Unwrap() error { return ErrNoConvergence }

// NonFiniteError reports the first point where the integrand returned NaN or Inf.
type NonFiniteError struct {
	X []float64
	Y float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("%v: f%v = %v", ErrNonFinite, e.X, e.Y)
}

func (e *NonFiniteError) Unwrap() error { return ErrNonFinite }
