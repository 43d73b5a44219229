package integrate

import "fmt"

// Genz-Malik degree 7 rule with an embedded degree 5 rule for the error
// estimate. Abscissae are fractions of the half-width.
const (
	gmLambda2  = 0.3585685828003180919906451539079374954541 // sqrt(9/70)
	gmLambda4  = 0.9486832980505137995996680633298155601160 // sqrt(9/10)
	gmLambda5  = 0.6882472016116852977216287342936235251269 // sqrt(9/19)
	gmWeight2  = 980.0 / 6561.0
	gmWeight4  = 200.0 / 19683.0
	gmWeightE2 = 245.0 / 486.0
	gmWeightE4 = 25.0 / 729.0
	gmRatio    = (gmLambda2 * gmLambda2) / (gmLambda4 * gmLambda4)
)

type region struct {
	center, half []float64
	val, err     float64
	splitDim     int
}

func (r region) finite() bool { return isFinite(r.val) && isFinite(r.err) }

type genzMalik struct {
	dim                  int
	w1, w3, w5, wE1, wE3 float64
	evalsPerRegion       int
	f                    pointFunc
	x                    []float64 // scratch point
}

func newGenzMalik(f pointFunc, dim int) *genzMalik {
	n := float64(dim)
	return &genzMalik{
		dim:            dim,
		w1:             (12824 - 9120*n + 400*n*n) / 19683,
		w3:             (1820 - 400*n) / 19683,
		w5:             6859.0 / 19683.0 / float64(uint(1)<<dim),
		wE1:            (729 - 950*n + 50*n*n) / 729,
		wE3:            (265 - 100*n) / 1458,
		evalsPerRegion: 1 + 4*dim + 2*dim*(dim-1) + (1 << dim),
		f:              f,
		x:              make([]float64, dim),
	}
}

func (g *genzMalik) eval() (float64, error) {
	y := g.f(g.x)
	if !isFinite(y) {
		return 0, &NonFiniteError{X: append([]float64(nil), g.x...), Y: y}
	}
	return y, nil
}

// apply evaluates the rule on r and fills in r.val, r.err and r.splitDim.
func (g *genzMalik) apply(r *region) error {
	c, h := r.center, r.half
	copy(g.x, c)
	f0, err := g.eval()
	if err != nil {
		return err
	}

	vol := 1.0
	for _, hi := range h {
		vol *= 2 * hi
	}

	var sum2, sum3, sum4, sum5 float64
	maxDiff := -1.0
	for i := 0; i < g.dim; i++ {
		var f2, f3 float64
		for _, s := range [...]float64{-1, 1} {
			g.x[i] = c[i] + s*gmLambda2*h[i]
			y, err := g.eval()
			if err != nil {
				return err
			}
			f2 += y
			g.x[i] = c[i] + s*gmLambda4*h[i]
			y, err = g.eval()
			if err != nil {
				return err
			}
			f3 += y
		}
		g.x[i] = c[i]
		sum2 += f2
		sum3 += f3

		// fourth difference picks the axis where f is least polynomial
		diff := abs(f2 - 2*f0 - gmRatio*(f3-2*f0))
		if diff > maxDiff || (diff == maxDiff && h[i] > h[r.splitDim]) {
			maxDiff, r.splitDim = diff, i
		}
	}

	for i := 0; i < g.dim-1; i++ {
		for j := i + 1; j < g.dim; j++ {
			for _, si := range [...]float64{-1, 1} {
				for _, sj := range [...]float64{-1, 1} {
					g.x[i] = c[i] + si*gmLambda4*h[i]
					g.x[j] = c[j] + sj*gmLambda4*h[j]
					y, err := g.eval()
					if err != nil {
						return err
					}
					sum4 += y
				}
			}
			g.x[i], g.x[j] = c[i], c[j]
		}
	}

	for mask := 0; mask < 1<<g.dim; mask++ {
		for i := 0; i < g.dim; i++ {
			s := 1.0
			if mask&(1<<i) != 0 {
				s = -1
			}
			g.x[i] = c[i] + s*gmLambda5*h[i]
		}
		y, err := g.eval()
		if err != nil {
			return err
		}
		sum5 += y
	}

	res7 := vol * (g.w1*f0 + gmWeight2*sum2 + g.w3*sum3 + gmWeight4*sum4 + g.w5*sum5)
	res5 := vol * (g.wE1*f0 + gmWeightE2*sum2 + g.wE3*sum3 + gmWeightE4*sum4)
	r.val = res7
	r.err = abs(res5 - res7)
	return nil
}

// split halves r along its split axis.
func split(r region) (region, region) {
	d := r.splitDim
	a := region{center: append([]float64(nil), r.center...), half: append([]float64(nil), r.half...)}
	b := region{center: append([]float64(nil), r.center...), half: append([]float64(nil), r.half...)}
	a.half[d] *= 0.5
	b.half[d] *= 0.5
	a.center[d] -= a.half[d]
	b.center[d] += b.half[d]
	return a, b
}

// IntegrateND integrates f over the box [low[i], high[i]] with adaptive
// Genz-Malik cubature. The region with the largest error is halved along the
// axis with the largest fourth difference until the total error meets opts
// or the evaluation budget (opts.Limit, DefaultMaxEval when 0) is spent. A
// budget smaller than one rule application is rejected.
//
// len(low) and len(high) must equal the arity of f. A box with zero width in
// any dimension yields 0 without calling f.
func IntegrateND[F Integrand](f F, low, high []float64, opts Options) (Result, error) {
	point, dim := thunk(f)
	if point == nil {
		return Result{}, fmt.Errorf("%w: nil integrand", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if len(low) != dim || len(high) != dim {
		return Result{}, fmt.Errorf("%w: need %d-dimensional bounds for a %d-ary integrand, got %d and %d", ErrInvalidBounds, dim, dim, len(low), len(high))
	}
	degenerate := false
	for i := range low {
		if err := checkBounds(low[i], high[i], i); err != nil {
			return Result{}, err
		}
		if low[i] == high[i] {
			degenerate = true
		}
	}
	if degenerate {
		return Result{}, nil
	}
	rule := newGenzMalik(point, dim)
	maxEval := opts.Limit
	if maxEval == 0 {
		maxEval = DefaultMaxEval
	}
	if maxEval < rule.evalsPerRegion {
		return Result{}, fmt.Errorf("%w: limit %d is below the %d evaluations of one %d-D rule application", ErrInvalidOptions, maxEval, rule.evalsPerRegion, dim)
	}

	first := region{center: make([]float64, dim), half: make([]float64, dim)}
	for i := range low {
		first.center[i] = 0.5 * (low[i] + high[i])
		first.half[i] = 0.5 * (high[i] - low[i])
	}
	if err := rule.apply(&first); err != nil {
		return Result{}, err
	}
	res := Result{Value: first.val, AbsErr: first.err, Evals: rule.evalsPerRegion, Regions: 1}
	if !first.finite() {
		return res, overflowed(res)
	}

	h := newErrHeap(func(r region) float64 { return r.err }, first)
	val := func(r region) float64 { return r.val }
	total, totalErr := first.val, first.err
	for !opts.converged(total, totalErr) {
		if res.Evals+2*rule.evalsPerRegion > maxEval {
			res.Value, res.AbsErr = h.totals(val)
			res.Regions = h.Len()
			if opts.converged(res.Value, res.AbsErr) {
				return res, nil
			}
			reason := "evaluation budget exhausted"
			if !isFinite(res.Value) || !isFinite(res.AbsErr) {
				reason = reasonOverflow
			}
			return res, &ConvergenceError{Estimate: res.Value, AbsErr: res.AbsErr, Evals: res.Evals, Reason: reason}
		}
		worst := h.pop()
		a, b := split(worst)
		if err := rule.apply(&a); err != nil {
			return Result{}, err
		}
		if err := rule.apply(&b); err != nil {
			return Result{}, err
		}
		res.Evals += 2 * rule.evalsPerRegion
		h.push(a)
		h.push(b)
		if !a.finite() || !b.finite() {
			res.Value, res.AbsErr = h.totals(val)
			res.Regions = h.Len()
			return res, overflowed(res)
		}
		total += a.val + b.val - worst.val
		totalErr += a.err + b.err - worst.err
		if opts.converged(total, totalErr) {
			total, totalErr = h.totals(val)
		}
	}
	res.Value, res.AbsErr = h.totals(val)
	res.Regions = h.Len()
	if !opts.converged(res.Value, res.AbsErr) {
		return res, overflowed(res)
	}
	return res, nil
}

// Integrate2 integrates f over the rectangle [low, high].
func Integrate2(f Func2, low, high [2]float64, opts Options) (Result, error) {
	return IntegrateND(f, low[:], high[:], opts)
}

// Integrate3 integrates f over the box [low, high].
func Integrate3(f Func3, low, high [3]float64, opts Options) (Result, error) {
	return IntegrateND(f, low[:], high[:], opts)
}

// Integrate4 integrates f over the hyper-rectangle [low, high].
func Integrate4(f Func4, low, high [4]float64, opts Options) (Result, error) {
	return IntegrateND(f, low[:], high[:], opts)
}
