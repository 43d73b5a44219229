package surfaces

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func mustSphere(t *testing.T, depth, radius float64) Sphere {
	t.Helper()
	s, err := NewSphere(depth, radius)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSphereGetIntersection_AxisCase(t *testing.T) {
	s := mustSphere(t, 1000, 500)
	tNear, tFar := s.GetIntersection(r3.Vec{}, r3.Vec{Z: 1})
	if math.Abs(tNear-500) > 1e-12 || math.Abs(tFar-1500) > 1e-12 {
		t.Fatalf("axis ray: got (%.12g, %.12g), want (500, 1500)", tNear, tFar)
	}

	// Opposite direction: both crossings behind the start point.
	tNear, tFar = s.GetIntersection(r3.Vec{}, r3.Vec{Z: -1})
	if math.Abs(tNear+1500) > 1e-12 || math.Abs(tFar+500) > 1e-12 {
		t.Fatalf("reversed ray: got (%.12g, %.12g), want (-1500, -500)", tNear, tFar)
	}
}

func TestSphereGetIntersection_ThroughCenter(t *testing.T) {
	s := mustSphere(t, -200, 75)
	c := s.Center()
	dirs := []r3.Vec{
		{X: 1}, {Y: -1}, {Z: 1},
		r3.Unit(r3.Vec{X: 1, Y: 2, Z: -3}),
		r3.Unit(r3.Vec{X: -0.3, Y: 0.1, Z: 0.9}),
	}
	for _, d := range dirs {
		// start 400 units before the center along d
		p := r3.Sub(c, r3.Scale(400, d))
		tNear, tFar := s.GetIntersection(p, d)
		if !Intersects(tNear, tFar) {
			t.Fatalf("dir %+v: expected hit", d)
		}
		if math.Abs((tFar-tNear)-2*s.Radius()) > 1e-9 {
			t.Fatalf("dir %+v: chord %.12g, want %.12g", d, tFar-tNear, 2*s.Radius())
		}
		if math.Abs(tNear-325) > 1e-9 || math.Abs(tFar-475) > 1e-9 {
			t.Fatalf("dir %+v: got (%.12g, %.12g), want (325, 475)", d, tNear, tFar)
		}
	}
}

func TestSphereGetIntersection_NonUnitDirection(t *testing.T) {
	s := mustSphere(t, 1000, 500)
	tNear, tFar := s.GetIntersection(r3.Vec{}, r3.Vec{Z: 4})
	if math.Abs(tNear-125) > 1e-12 || math.Abs(tFar-375) > 1e-12 {
		t.Fatalf("scaled dir: got (%.12g, %.12g), want (125, 375)", tNear, tFar)
	}
}

func TestSphereGetIntersection_Miss(t *testing.T) {
	s := mustSphere(t, 1000, 500)
	tNear, tFar := s.GetIntersection(r3.Vec{X: 500.001}, r3.Vec{Z: 1})
	if Intersects(tNear, tFar) || !math.IsNaN(tNear) || !math.IsNaN(tFar) {
		t.Fatalf("expected NoIntersection, got (%v, %v)", tNear, tFar)
	}
	// zero direction
	if Intersects(s.GetIntersection(r3.Vec{}, r3.Vec{})) {
		t.Fatal("zero direction must not intersect")
	}
	// zero value sphere
	if Intersects(Sphere{}.GetIntersection(r3.Vec{}, r3.Vec{Z: 1})) {
		t.Fatal("zero sphere must not intersect")
	}
}

func TestSphereGetIntersection_Tangent(t *testing.T) {
	s := mustSphere(t, 1000, 500)
	tNear, tFar := s.GetIntersection(r3.Vec{X: 500}, r3.Vec{Z: 1})
	if !Intersects(tNear, tFar) {
		t.Fatal("tangent ray should touch the sphere")
	}
	if math.Abs(tNear-tFar) > 1e-9 || math.Abs(tNear-1000) > 1e-9 {
		t.Fatalf("tangent: got (%.12g, %.12g), want (1000, 1000)", tNear, tFar)
	}
}

func TestSphereGetIntersection_Inside(t *testing.T) {
	s := mustSphere(t, 0, 10)
	tNear, tFar := s.GetIntersection(r3.Vec{X: 3, Y: -2, Z: 1}, r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1}))
	if !(tNear < 0 && tFar > 0) {
		t.Fatalf("inside start must give tNear<0<tFar, got (%.12g, %.12g)", tNear, tFar)
	}
}

func TestSphereGetIntersection_FarAwayStable(t *testing.T) {
	// Large b relative to 4ac: the naive formula loses the near root.
	s := mustSphere(t, 0, 1)
	tNear, tFar := s.GetIntersection(r3.Vec{Z: -1e4}, r3.Vec{Z: 1})
	if math.Abs(tNear-(1e4-1)) > 1e-9 || math.Abs(tFar-(1e4+1)) > 1e-9 {
		t.Fatalf("far ray: got (%.12g, %.12g)", tNear, tFar)
	}
	// Small sphere near the start point of a long ray.
	tNear, tFar = s.GetIntersection(r3.Vec{Z: -1.5}, r3.Vec{Z: 1e-6})
	if math.Abs(tNear*1e-6-0.5) > 1e-12 || math.Abs(tFar*1e-6-2.5) > 1e-12 {
		t.Fatalf("tiny dir: got (%.12g, %.12g)", tNear, tFar)
	}
}

func TestNewSphereValidation(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewSphere(0, r); !errors.Is(err, ErrInvalidRadius) {
			t.Fatalf("radius %v: expected ErrInvalidRadius, got %v", r, err)
		}
	}
	for _, d := range []float64{math.NaN(), math.Inf(-1)} {
		if _, err := NewSphere(d, 1); !errors.Is(err, ErrInvalidDepth) {
			t.Fatalf("depth %v: expected ErrInvalidDepth, got %v", d, err)
		}
	}
}

func TestSphereFieldsAndJSON(t *testing.T) {
	s := mustSphere(t, 1948.07, 800)
	back, err := SphereFromFields(s.Fields())
	if err != nil || back != s {
		t.Fatalf("fields round trip: %v %v", back, err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"originDepth":1948.07,"radius":800}` {
		t.Fatalf("unexpected JSON: %s", data)
	}
	var bad Sphere
	if err := json.Unmarshal([]byte(`{"originDepth":0,"radius":-1}`), &bad); !errors.Is(err, ErrInvalidRadius) {
		t.Fatalf("expected ErrInvalidRadius from JSON, got %v", err)
	}
}

func TestDepth(t *testing.T) {
	if math.Abs(Depth(0)-1.94807) > 1e-12 {
		t.Fatalf("Depth(0) = %.12g", Depth(0))
	}
	if Depth(SurfaceElevation) != 0 {
		t.Fatal("surface must be at depth 0")
	}
}
