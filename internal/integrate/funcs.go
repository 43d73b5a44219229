package integrate

import "reflect"

// Integrands of fixed arity. Implementations must be reentrant if the
// same function is integrated from several goroutines.
type (
	Func1 func(x float64) float64
	Func2 func(x, y float64) float64
	Func3 func(x, y, z float64) float64
	Func4 func(x, y, z, w float64) float64
)

// Integrand is the set of functions IntegrateND accepts. Both the named
// types and plain function literals are allowed.
type Integrand interface {
	Func2 | Func3 | Func4 |
		func(float64, float64) float64 |
		func(float64, float64, float64) float64 |
		func(float64, float64, float64, float64) float64
}

// pointFunc evaluates an integrand at a flat coordinate slice.
type pointFunc func(x []float64) float64

// callers maps an arity to the adapter that unpacks x into a positional call.
var callers = map[int]func(f any) pointFunc{
	2: func(f any) pointFunc {
		g := f.(Func2)
		return func(x []float64) float64 { return g(x[0], x[1]) }
	},
	3: func(f any) pointFunc {
		g := f.(Func3)
		return func(x []float64) float64 { return g(x[0], x[1], x[2]) }
	},
	4: func(f any) pointFunc {
		g := f.(Func4)
		return func(x []float64) float64 { return g(x[0], x[1], x[2], x[3]) }
	},
}

// thunk normalizes f to its named type and returns the flat-slice adapter.
// A nil f yields a nil adapter.
func thunk[F Integrand](f F) (pointFunc, int) {
	if reflect.ValueOf(f).IsNil() {
		return nil, 0
	}
	var (
		named any
		n     int
	)
	switch g := any(f).(type) {
	case Func2:
		named, n = g, 2
	case func(float64, float64) float64:
		named, n = Func2(g), 2
	case Func3:
		named, n = g, 3
	case func(float64, float64, float64) float64:
		named, n = Func3(g), 3
	case Func4:
		named, n = g, 4
	case func(float64, float64, float64, float64) float64:
		named, n = Func4(g), 4
	}
	return callers[n](named), n
}

// Product1 returns x -> f(x)*g(x).
func Product1(f, g Func1) Func1 {
	return func(x float64) float64 { return f(x) * g(x) }
}

// Product2 returns (x, y) -> f(x, y)*g(x, y).
func Product2(f, g Func2) Func2 {
	return func(x, y float64) float64 { return f(x, y) * g(x, y) }
}
