package integrate

import "math"

func isFinite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
