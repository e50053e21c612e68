// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// CubicInterpolate performs Catmull-Rom interpolation.
// x is the fractional position between y1 and y2 (0 <= x <= 1)
// y0, y1, y2, y3 are four consecutive samples
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// SampleCubic reads buf at a fractional frame position using the four
// surrounding samples. Neighbours that fall outside buf are extrapolated by
// mirroring the slope at the edge, so the first and last samples keep their
// local trend instead of being pulled towards zero.
//
// Positions outside [0, len(buf)-1] return 0.
func SampleCubic(buf []float32, pos float64) float32 {
	n := len(buf)
	if n == 0 || pos < 0 || pos > float64(n-1) || math.IsNaN(pos) {
		return 0
	}

	i := int(pos)
	x := float32(pos - float64(i))
	if x == 0 {
		return buf[i]
	}
	if n == 1 {
		return buf[0]
	}

	y1 := buf[i]
	y2 := buf[i+1] // i < n-1 because x > 0

	var y0, y3 float32
	if i > 0 {
		y0 = buf[i-1]
	} else {
		y0 = 2*y1 - y2
	}
	if i+2 < n {
		y3 = buf[i+2]
	} else {
		y3 = 2*y2 - y1
	}

	return CubicInterpolate(y0, y1, y2, y3, x)
}
