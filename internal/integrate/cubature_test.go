package integrate

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrateNDSeparable(t *testing.T) {
	g := func(x float64) float64 { return math.Exp(x) }
	h := func(y float64) float64 { return math.Cos(y) }
	f := func(x, y float64) float64 { return g(x) * h(y) }

	opts := DefaultOptions()
	gx, err := Integrate1D(g, 0, 1, opts)
	require.NoError(t, err)
	hy, err := Integrate1D(h, 0, 1, opts)
	require.NoError(t, err)

	res, err := Integrate2(f, [2]float64{0, 0}, [2]float64{1, 1}, opts)
	require.NoError(t, err)

	want := gx.Value * hy.Value
	tol := res.AbsErr + math.Abs(gx.Value)*hy.AbsErr + math.Abs(hy.Value)*gx.AbsErr
	assert.InDelta(t, want, res.Value, math.Max(tol, 1e-9))
	assert.InDelta(t, (math.E-1)*math.Sin(1), res.Value, opts.EpsRel*math.Abs(want))
}

func TestIntegrateNDConstantBox(t *testing.T) {
	f := func(x, y, z float64) float64 { return 2 }
	res, err := Integrate3(f, [3]float64{-1, 0, 2}, [3]float64{1, 3, 2.5}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2*2*3*0.5, res.Value, 1e-12)
	assert.Equal(t, 1, res.Regions)
}

func TestIntegrateND4D(t *testing.T) {
	f := Func4(func(x, y, z, w float64) float64 { return x * y * z * w })
	res, err := Integrate4(f, [4]float64{0, 0, 0, 0}, [4]float64{1, 1, 1, 1}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 1.0/16, res.Value, 1e-12)
	// 1 + 4n + 2n(n-1) + 2^n points per region
	assert.Equal(t, 1+16+24+16, res.Evals)
}

func TestIntegrateNDGaussian(t *testing.T) {
	f := func(x, y float64) float64 { return math.Exp(-x*x - y*y) }
	opts := Options{EpsAbs: 1e-9, EpsRel: 1e-7}
	res, err := IntegrateND(f, []float64{-5, -5}, []float64{5, 5}, opts)
	require.NoError(t, err)
	want := math.Pi * math.Erf(5) * math.Erf(5)
	assert.InDelta(t, want, res.Value, 1e-6)
	assert.Greater(t, res.Regions, 1)
	assert.LessOrEqual(t, res.AbsErr, opts.tolerance(res.Value))
}

func TestIntegrateNDZeroWidth(t *testing.T) {
	calls := 0
	f := func(x, y, z float64) float64 { calls++; return 1 }
	res, err := IntegrateND(f, []float64{0, 1, 0}, []float64{1, 1, 1}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Zero(t, calls)
}

func TestIntegrateNDInvalidBounds(t *testing.T) {
	calls := 0
	f := func(x, y float64) float64 { calls++; return 1 }
	_, err := IntegrateND(f, []float64{0, 1}, []float64{1, 0}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidBounds)
	_, err = IntegrateND(f, []float64{0}, []float64{1, 1}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidBounds)
	_, err = IntegrateND(f, []float64{0, 0, 0}, []float64{1, 1, 1}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidBounds)
	_, err = IntegrateND(f, []float64{0, math.NaN()}, []float64{1, 1}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidBounds)
	assert.Zero(t, calls)

	_, err = IntegrateND(Func2(nil), []float64{0, 0}, []float64{1, 1}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestIntegrateNDNonFinite(t *testing.T) {
	f := func(x, y float64) float64 { return 1 / (x + y - 1) }
	_, err := IntegrateND(f, []float64{0, 0}, []float64{1, 1}, DefaultOptions())
	require.ErrorIs(t, err, ErrNonFinite)
	var nf *NonFiniteError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []float64{0.5, 0.5}, nf.X)
}

func TestIntegrateNDBudgetExhausted(t *testing.T) {
	f := func(x, y float64) float64 {
		dx, dy := x-0.3, y-0.6
		return math.Exp(-400 * (dx*dx + dy*dy))
	}
	opts := Options{EpsAbs: 1e-14, EpsRel: 1e-12, Limit: 200}
	res, err := IntegrateND(f, []float64{0, 0}, []float64{1, 1}, opts)
	require.ErrorIs(t, err, ErrNoConvergence)
	var ce *ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.LessOrEqual(t, ce.Evals, opts.Limit)
	assert.Equal(t, res.Value, ce.Estimate)
	assert.Greater(t, ce.AbsErr, opts.tolerance(ce.Estimate))
}

func TestIntegrateNDOverflow(t *testing.T) {
	f := func(x, y float64) float64 { return 1e308 }
	res, err := Integrate2(f, [2]float64{0, 0}, [2]float64{2, 2}, DefaultOptions())
	require.ErrorIs(t, err, ErrNoConvergence)
	var ce *ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, reasonOverflow, ce.Reason)
	assert.False(t, isFinite(res.Value) && isFinite(res.AbsErr))

	_, err = Integrate2(f, [2]float64{-1e308, 0}, [2]float64{1e308, 1}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func TestIntegrateNDLimitBelowOneRule(t *testing.T) {
	calls := 0
	f := func(x, y float64) float64 { calls++; return x * y }
	_, err := IntegrateND(f, []float64{0, 0}, []float64{1, 1}, Options{EpsAbs: 1e-6, Limit: 5})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Zero(t, calls)

	// one 2-D rule application is 17 evaluations
	res, err := IntegrateND(f, []float64{0, 0}, []float64{1, 1}, Options{EpsAbs: 1e-6, Limit: 17})
	require.NoError(t, err)
	assert.Equal(t, 17, res.Evals)
	assert.InDelta(t, 0.25, res.Value, 1e-12)
}

func TestIntegrateConcurrent(t *testing.T) {
	f1 := func(x float64) float64 { return math.Exp(-x) * math.Cos(5*x) }
	f3 := func(x, y, z float64) float64 { return math.Exp(-(x*x + y*y + z*z)) }
	lo, hi := []float64{-1, -1, -1}, []float64{1, 1, 1}

	want1, err := Integrate1D(f1, 0, 3, DefaultOptions())
	require.NoError(t, err)
	want3, err := IntegrateND(f3, lo, hi, DefaultOptions())
	require.NoError(t, err)

	const n = 8
	got1 := make([]Result, n)
	got3 := make([]Result, n)
	errs := make([]error, 2*n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			got1[i], errs[2*i] = Integrate1D(f1, 0, 3, DefaultOptions())
		}()
		go func() {
			defer wg.Done()
			got3[i], errs[2*i+1] = IntegrateND(f3, lo, hi, DefaultOptions())
		}()
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		require.NoError(t, errs[2*i])
		require.NoError(t, errs[2*i+1])
		assert.Equal(t, want1, got1[i])
		assert.Equal(t, want3, got3[i])
	}
}

func TestIntegrateNDDeterministic(t *testing.T) {
	f := func(x, y float64) float64 { return math.Sin(3*x) * math.Exp(y*x) }
	a, errA := IntegrateND(f, []float64{0, -1}, []float64{2, 1}, DefaultOptions())
	b, errB := IntegrateND(f, []float64{0, -1}, []float64{2, 1}, DefaultOptions())
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestProduct2(t *testing.T) {
	p := Product2(
		func(x, y float64) float64 { return x },
		func(x, y float64) float64 { return y },
	)
	res, err := Integrate2(p, [2]float64{0, 0}, [2]float64{2, 3}, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2*4.5, res.Value, 1e-12)
}
