package integrate

// Result is an integral estimate together with its error bound.
type Result struct {
	Value   float64 // integral estimate
	AbsErr  float64 // estimated absolute error of Value
	Evals   int     // number of integrand evaluations
	Regions int     // number of subintervals (1-D) or hyper-rectangles (N-D) at exit
}

const reasonOverflow = "estimate is not finite"

// overflowed reports a result whose value or error left the float64 range
// even though every integrand value was finite.
func overflowed(res Result) error {
	return &ConvergenceError{Estimate: res.Value, AbsErr: res.AbsErr, Evals: res.Evals, Reason: reasonOverflow}
}
