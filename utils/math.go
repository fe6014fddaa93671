// Package utils contains small numeric helpers shared by the planning packages.
package utils

import (
	"math"
)

// DefaultEpsilon is the tolerance used when comparing planning quantities that went through
// a handful of floating point operations.
const DefaultEpsilon = 1e-9

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Sign returns -1, 0 or 1 matching the sign of x.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// CeilDiv returns the smallest integer k such that k*step >= x, ignoring relative float noise
// below DefaultEpsilon. CeilDiv(0.9, 0.1) is 9 even though 0.9/0.1 evaluates to 9.000000000000002.
func CeilDiv(x, step float64) int {
	if x <= 0 || step <= 0 {
		return 0
	}
	q := x / step
	r := math.Round(q)
	if math.Abs(q-r) <= DefaultEpsilon*math.Max(1, r) {
		return int(r)
	}
	return int(math.Ceil(q))
}

// Linspace returns num evenly spaced samples over the closed interval [start, stop].
// A single sample returns start.
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	out := make([]float64, num)
	if num == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	// pin the endpoint so accumulated rounding never moves it
	out[num-1] = stop
	return out
}

// IsFinite reports whether every value is neither NaN nor infinite.
func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
