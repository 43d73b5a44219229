package muongun

import (
	"fmt"
	"math"
	"sort"

	"github.com/lukaszgryglicki/muongun/internal/integrate"
)

// GaisserFlux is the sea-level differential muon flux
// [cm^-2 s^-1 sr^-1 GeV^-1] at energy e [GeV] and zenith cosine cosTheta,
// including pion and kaon contributions.
func GaisserFlux(e, cosTheta float64) float64 {
	if e <= 0 {
		return 0
	}
	x := 1.1 * e * cosTheta
	return 0.14 * math.Pow(e, -2.7) * (1/(1+x/115) + 0.054/(1+x/850))
}

// PowerLaw is dN/dE = Norm * E^-Index.
type PowerLaw struct {
	Norm, Index float64
}

func (p PowerLaw) Eval(e float64) float64 { return p.Norm * math.Pow(e, -p.Index) }

// Integral is the closed form of Eval over [lo, hi], lo > 0.
func (p PowerLaw) Integral(lo, hi float64) float64 {
	if p.Index == 1 {
		return p.Norm * math.Log(hi/lo)
	}
	g := 1 - p.Index
	return p.Norm * (math.Pow(hi, g) - math.Pow(lo, g)) / g
}

// IntegrandSpec describes a named integrand usable from a config file.
// Arity 0 means the integrand takes any dimension from 1 to 4.
type IntegrandSpec struct {
	Arity int
	Doc   string
	Build func(dim int, params map[string]float64) (any, error)
}

func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

// Integrands is the registry of named integrands. Build returns one of
// integrate.Func1..Func4 matching dim.
var Integrands = map[string]IntegrandSpec{
	"power-law": {
		Arity: 1,
		Doc:   "norm * E^-index over energy",
		Build: func(_ int, p map[string]float64) (any, error) {
			pl := PowerLaw{Norm: param(p, "norm", PowerLawNorm), Index: param(p, "index", PowerLawIndex)}
			return integrate.Func1(pl.Eval), nil
		},
	},
	"gaisser": {
		Arity: 2,
		Doc:   "sea-level muon flux over (energy, cos zenith)",
		Build: func(int, map[string]float64) (any, error) {
			return integrate.Func2(GaisserFlux), nil
		},
	},
	"gaisser-solid-angle": {
		Arity: 3,
		Doc:   "sea-level muon flux over (energy, cos zenith, azimuth)",
		Build: func(int, map[string]float64) (any, error) {
			return integrate.Func3(func(e, c, _ float64) float64 { return GaisserFlux(e, c) }), nil
		},
	},
	"gaussian": {
		Arity: 0,
		Doc:   "isotropic normal density exp(-|x-mean|^2/2sigma^2) in 1 to 4 dimensions",
		Build: buildGaussian,
	},
}

func buildGaussian(dim int, p map[string]float64) (any, error) {
	mu := param(p, "mean", GaussMean)
	sigma := param(p, "sigma", GaussSigma)
	if !(sigma > 0) {
		return nil, fmt.Errorf("gaussian sigma must be > 0, got %g", sigma)
	}
	k := -0.5 / (sigma * sigma)
	g := func(x float64) float64 { return (x - mu) * (x - mu) }
	switch dim {
	case 1:
		return integrate.Func1(func(x float64) float64 { return math.Exp(k * g(x)) }), nil
	case 2:
		return integrate.Func2(func(x, y float64) float64 { return math.Exp(k * (g(x) + g(y))) }), nil
	case 3:
		return integrate.Func3(func(x, y, z float64) float64 { return math.Exp(k * (g(x) + g(y) + g(z))) }), nil
	case 4:
		return integrate.Func4(func(x, y, z, w float64) float64 { return math.Exp(k * (g(x) + g(y) + g(z) + g(w))) }), nil
	}
	return nil, fmt.Errorf("gaussian supports 1 to 4 dimensions, got %d", dim)
}

// IntegrandNames lists the registry keys in sorted order.
func IntegrandNames() []string {
	names := make([]string, 0, len(Integrands))
	for n := range Integrands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// integrateAny dispatches a built integrand to the matching integrator.
func integrateAny(f any, low, high []float64, opts integrate.Options) (integrate.Result, error) {
	switch g := f.(type) {
	case integrate.Func1:
		if len(low) != 1 || len(high) != 1 {
			return integrate.Result{}, fmt.Errorf("%w: 1-D integrand needs one bound per side", integrate.ErrInvalidBounds)
		}
		return integrate.Integrate1D(g, low[0], high[0], opts)
	case integrate.Func2:
		return integrate.IntegrateND(g, low, high, opts)
	case integrate.Func3:
		return integrate.IntegrateND(g, low, high, opts)
	case integrate.Func4:
		return integrate.IntegrateND(g, low, high, opts)
	}
	return integrate.Result{}, fmt.Errorf("unsupported integrand type %T", f)
}
