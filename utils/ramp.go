// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// MoveToward steps cur towards target by at most delta without overshooting.
// A non-positive delta jumps straight to target.
func MoveToward(cur, target, delta float64) float64 {
	if delta <= 0 {
		return target
	}
	if cur < target {
		cur += delta
		if cur > target {
			cur = target
		}
		return cur
	}
	if cur > target {
		cur -= delta
		if cur < target {
			cur = target
		}
	}
	return cur
}

// Lerp blends a towards b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InverseLerp maps v inside [a, b] to [0, 1]. A degenerate range returns 1
// when v reaches b.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		if v >= b {
			return 1
		}
		return 0
	}
	return Clamp01((v - a) / (b - a))
}
