package muongun

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/lukaszgryglicki/muongun/internal/integrate"
	"github.com/lukaszgryglicki/muongun/internal/surfaces"
)

var ErrConfig = errors.New("muongun: configuration error")

type IntegralCfg struct {
	Name      string             `yaml:"name" json:"name"`
	Integrand string             `yaml:"integrand" json:"integrand"`
	Low       []float64          `yaml:"low" json:"low"`
	High      []float64          `yaml:"high" json:"high"`
	Params    map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	// Tolerance overrides fields of the top-level tolerance.
	Tolerance *ToleranceCfg      `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
}

// ToleranceCfg is a partial integrate.Options: unset fields are inherited.
type ToleranceCfg struct {
	EpsAbs *float64 `yaml:"epsabs,omitempty" json:"epsabs,omitempty"`
	EpsRel *float64 `yaml:"epsrel,omitempty" json:"epsrel,omitempty"`
	Limit  *int     `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Options overlays the fields set in tc on def. A nil tc yields def.
func (tc *ToleranceCfg) Options(def integrate.Options) integrate.Options {
	if tc == nil {
		return def
	}
	o := def
	if tc.EpsAbs != nil {
		o.EpsAbs = *tc.EpsAbs
	}
	if tc.EpsRel != nil {
		o.EpsRel = *tc.EpsRel
	}
	if tc.Limit != nil {
		o.Limit = *tc.Limit
	}
	return o
}

// Tolerance returns a ToleranceCfg with every field of o set.
func Tolerance(o integrate.Options) *ToleranceCfg {
	return &ToleranceCfg{EpsAbs: &o.EpsAbs, EpsRel: &o.EpsRel, Limit: &o.Limit}
}

type RayCfg struct {
	Point     [3]float64 `yaml:"point" json:"point"`
	Direction [3]float64 `yaml:"direction" json:"direction"`
}

func (r RayCfg) Vecs() (p, dir r3.Vec) {
	return r3.Vec{X: r.Point[0], Y: r.Point[1], Z: r.Point[2]},
		r3.Vec{X: r.Direction[0], Y: r.Direction[1], Z: r.Direction[2]}
}

type SphereCfg struct {
	surfaces.SphereFields `yaml:",inline"`

	Name string   `yaml:"name" json:"name"`
	Rays []RayCfg `yaml:"rays" json:"rays"`
}

type Config struct {
	// Tolerance is applied over integrate.DefaultOptions.
	Tolerance *ToleranceCfg `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	// Workers caps concurrent jobs; 0 means one per CPU.
	Workers   int           `yaml:"workers,omitempty" json:"workers,omitempty"`
	Integrals []IntegralCfg `yaml:"integrals" json:"integrals"`
	Spheres   []SphereCfg   `yaml:"spheres,omitempty" json:"spheres,omitempty"`
}

// Options returns the run-wide tolerance.
func (c *Config) Options() integrate.Options {
	return c.Tolerance.Options(integrate.DefaultOptions())
}

// Options returns the tolerance for this integral.
func (ic IntegralCfg) Options(def integrate.Options) integrate.Options {
	return ic.Tolerance.Options(def)
}

// Build validates the integral and constructs its integrand.
func (ic IntegralCfg) Build() (any, error) {
	spec, ok := Integrands[ic.Integrand]
	if !ok {
		return nil, fmt.Errorf("%w: integral %q: unknown integrand %q (known: %v)", ErrConfig, ic.Name, ic.Integrand, IntegrandNames())
	}
	if len(ic.Low) != len(ic.High) {
		return nil, fmt.Errorf("%w: integral %q: low has %d bounds, high has %d", ErrConfig, ic.Name, len(ic.Low), len(ic.High))
	}
	dim := len(ic.Low)
	if spec.Arity != 0 && dim != spec.Arity {
		return nil, fmt.Errorf("%w: integral %q: %s takes %d arguments, got %d bounds", ErrConfig, ic.Name, ic.Integrand, spec.Arity, dim)
	}
	if dim < 1 || dim > 4 {
		return nil, fmt.Errorf("%w: integral %q: dimension must be 1 to 4, got %d", ErrConfig, ic.Name, dim)
	}
	f, err := spec.Build(dim, ic.Params)
	if err != nil {
		return nil, fmt.Errorf("%w: integral %q: %v", ErrConfig, ic.Name, err)
	}
	return f, nil
}

// Build validates the sphere parameters.
func (sc SphereCfg) Build() (surfaces.Sphere, error) {
	s, err := surfaces.SphereFromFields(sc.SphereFields)
	if err != nil {
		return surfaces.Sphere{}, fmt.Errorf("%w: sphere %q: %w", ErrConfig, sc.Name, err)
	}
	return s, nil
}

// ParseConfig decodes a YAML (or JSON) config, applies defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	def := cfg.Options()
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%w: tolerance: %w", ErrConfig, err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must be >= 0, got %d", ErrConfig, cfg.Workers)
	}
	if len(cfg.Integrals) == 0 && len(cfg.Spheres) == 0 {
		return nil, fmt.Errorf("%w: config has no integrals and no spheres", ErrConfig)
	}
	for i := range cfg.Integrals {
		ic := &cfg.Integrals[i]
		if ic.Name == "" {
			ic.Name = fmt.Sprintf("integral-%d", i)
		}
		if _, err := ic.Build(); err != nil {
			return nil, err
		}
		if err := ic.Options(def).Validate(); err != nil {
			return nil, fmt.Errorf("%w: integral %q: tolerance: %w", ErrConfig, ic.Name, err)
		}
	}
	for i := range cfg.Spheres {
		sc := &cfg.Spheres[i]
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("sphere-%d", i)
		}
		if _, err := sc.Build(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string, logger *zap.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("loaded config",
		zap.String("path", path),
		zap.Int("integrals", len(cfg.Integrals)),
		zap.Int("spheres", len(cfg.Spheres)),
		zap.Float64("epsabs", cfg.Options().EpsAbs),
		zap.Float64("epsrel", cfg.Options().EpsRel),
		zap.Int("limit", cfg.Options().Limit),
	)
	return cfg, nil
}
