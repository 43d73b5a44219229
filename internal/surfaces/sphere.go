package surfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrInvalidRadius = errors.New("surfaces: sphere radius must be finite and > 0")
	ErrInvalidDepth  = errors.New("surfaces: sphere origin depth must be finite")
)

// Sphere is a sphere whose center sits on the vertical axis at OriginDepth.
// The center is the point (0, 0, OriginDepth). Sphere values are immutable;
// the zero value is not a valid sphere and never intersects.
type Sphere struct {
	originDepth, radius float64
}

var _ Surface = Sphere{}

// NewSphere validates and builds a sphere.
func NewSphere(originDepth, radius float64) (Sphere, error) {
	if math.IsNaN(originDepth) || math.IsInf(originDepth, 0) {
		return Sphere{}, fmt.Errorf("%w, got %g", ErrInvalidDepth, originDepth)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Sphere{}, fmt.Errorf("%w, got %g", ErrInvalidRadius, radius)
	}
	return Sphere{originDepth: originDepth, radius: radius}, nil
}

func (s Sphere) OriginDepth() float64 { return s.originDepth }
func (s Sphere) Radius() float64      { return s.radius }
func (s Sphere) Center() r3.Vec       { return r3.Vec{Z: s.originDepth} }

func (s Sphere) String() string {
	return fmt.Sprintf("Sphere(originDepth=%g, radius=%g)", s.originDepth, s.radius)
}

// GetIntersection solves |p + t*dir - center|^2 = radius^2 for t.
// dir need not be unit length; t is measured in units of |dir|.
// Roots are computed in the cancellation-free form: the larger-magnitude
// root from q = -(b + sign(b)*sqrt(disc))/2, the other from t0*t1 = c/a.
func (s Sphere) GetIntersection(p, dir r3.Vec) (float64, float64) {
	if !(s.radius > 0) {
		return NoIntersection()
	}
	a := r3.Norm2(dir)
	if a == 0 {
		return NoIntersection()
	}
	oc := r3.Sub(p, s.Center())
	b := 2 * r3.Dot(dir, oc)
	c := r3.Norm2(oc) - s.radius*s.radius
	disc := b*b - 4*a*c
	if disc < 0 || math.IsNaN(disc) {
		return NoIntersection()
	}
	q := -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
	if q == 0 {
		// b == 0 and disc == 0: the ray grazes the sphere at p
		return 0, 0
	}
	t0, t1 := q/a, c/q
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1
}

// SphereFields is the flat, serializable form of a Sphere.
type SphereFields struct {
	OriginDepth float64 `json:"originDepth" yaml:"originDepth"`
	Radius      float64 `json:"radius" yaml:"radius"`
}

// Fields extracts the sphere parameters.
func (s Sphere) Fields() SphereFields {
	return SphereFields{OriginDepth: s.originDepth, Radius: s.radius}
}

// SphereFromFields rebuilds a sphere, applying the same checks as NewSphere.
func SphereFromFields(f SphereFields) (Sphere, error) {
	return NewSphere(f.OriginDepth, f.Radius)
}

func (s Sphere) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields())
}

func (s *Sphere) UnmarshalJSON(data []byte) error {
	var f SphereFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	sp, err := SphereFromFields(f)
	if err != nil {
		return err
	}
	*s = sp
	return nil
}
