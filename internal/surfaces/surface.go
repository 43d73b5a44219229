// Package surfaces holds closed surfaces that trajectories can cross.
package surfaces

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Surface answers where a ray crosses its boundary.
//
// GetIntersection returns the ray parameters t (with points p + t*dir) at
// which the boundary is crossed, ordered so the first is not larger than the
// second. A ray that misses returns NoIntersection().
type Surface interface {
	GetIntersection(p, dir r3.Vec) (float64, float64)
}

// NoIntersection is the pair returned when a ray misses a surface.
func NoIntersection() (float64, float64) { return math.NaN(), math.NaN() }

// Intersects reports whether a pair returned by GetIntersection is a hit.
func Intersects(tNear, tFar float64) bool {
	return !math.IsNaN(tNear) && !math.IsNaN(tFar)
}

// SurfaceElevation is the height of the ice surface above the detector
// coordinate origin, in meters.
const SurfaceElevation = 1948.07

// Depth converts a detector z-coordinate [m] to vertical depth below the
// surface [km].
func Depth(z float64) float64 { return (SurfaceElevation - z) / 1e3 }
