// Package integrate evaluates definite integrals of black-box functions of
// one to four real arguments with adaptive quadrature and cubature.
package integrate

import "fmt"

const (
	// DefaultEpsAbs and DefaultEpsRel match the tolerances used by the
	// QUADPACK drivers (sqrt of single precision epsilon).
	DefaultEpsAbs = 1.49e-6
	DefaultEpsRel = 1.49e-6
	// DefaultLimit1D is the maximum number of subintervals for Integrate1D
	// when Options.Limit is 0.
	DefaultLimit1D = 50
	// DefaultMaxEval is the evaluation budget for IntegrateND when
	// Options.Limit is 0.
	DefaultMaxEval = 1_000_000
)

// Options controls when an adaptive integration stops.
//
// EpsAbs and EpsRel are the absolute and relative error targets; the
// integration is converged once the estimated error is at most
// max(EpsAbs, EpsRel*|estimate|). Limit is the subdivision budget: the
// maximum number of subintervals in 1-D, the maximum number of function
// evaluations in N-D. Zero selects DefaultLimit1D or DefaultMaxEval.
type Options struct {
	EpsAbs float64 `json:"epsabs" yaml:"epsabs"`
	EpsRel float64 `json:"epsrel" yaml:"epsrel"`
	Limit  int     `json:"limit" yaml:"limit"`
}

// DefaultOptions returns the tolerances used when the caller has no opinion.
func DefaultOptions() Options {
	return Options{EpsAbs: DefaultEpsAbs, EpsRel: DefaultEpsRel}
}

// Validate reports whether o is usable. It wraps ErrInvalidOptions.
func (o Options) Validate() error {
	if !isFinite(o.EpsAbs) || !isFinite(o.EpsRel) || o.EpsAbs < 0 || o.EpsRel < 0 {
		return fmt.Errorf("%w: tolerances must be finite and non-negative, got epsabs=%g epsrel=%g", ErrInvalidOptions, o.EpsAbs, o.EpsRel)
	}
	if o.EpsAbs == 0 && o.EpsRel == 0 {
		return fmt.Errorf("%w: epsabs and epsrel cannot both be zero", ErrInvalidOptions)
	}
	if o.Limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0, got %d", ErrInvalidOptions, o.Limit)
	}
	return nil
}

// tolerance is the stopping bound for the current estimate.
func (o Options) tolerance(estimate float64) float64 {
	rel := o.EpsRel * abs(estimate)
	if rel > o.EpsAbs {
		return rel
	}
	return o.EpsAbs
}

// converged reports whether a finite estimate with error absErr meets o.
// NaN or Inf in either never converges.
func (o Options) converged(estimate, absErr float64) bool {
	return isFinite(estimate) && isFinite(absErr) && absErr <= o.tolerance(estimate)
}
