// SPDX-License-Identifier: EPL-2.0

package syncgroup

import "math"

// Length returns the group length for members described by their natural
// durations and modes: the longest member that cannot stretch wins, and only
// when every member can stretch does the longest stretchable one decide.
func Length(durations []float64, modes []Mode) float64 {
	var fixed, stretchable float64
	for i, d := range durations {
		if d <= 0 {
			continue
		}
		if modes[i].Has(Stretch) {
			stretchable = max(stretchable, d)
		} else {
			fixed = max(fixed, d)
		}
	}

	if fixed > 0 {
		return fixed
	}
	return stretchable
}

// Speed returns the playback-speed factor that fits a member of natural
// duration d into a group of length l.
//
// Repeating members play a whole number of loops per period: the count is
// rounded down when only stretching is allowed, up when only squeezing is
// allowed, and to the nearest when both are. Members that may neither
// stretch nor squeeze keep their natural speed.
func Speed(d, l float64, mode Mode) float64 {
	if d <= 0 || l <= 0 {
		return 1
	}

	stretch, squeeze := mode.Has(Stretch), mode.Has(Squeeze)

	if mode.Has(Repeat) {
		r := l / d
		var n float64
		switch {
		case stretch && squeeze:
			n = math.Round(r)
		case stretch:
			n = math.Floor(r)
		case squeeze:
			n = math.Ceil(r)
		default:
			return 1
		}
		if n < 1 {
			if !squeeze {
				return 1
			}
			n = 1
		}
		return n * d / l
	}

	switch {
	case d < l && stretch, d > l && squeeze:
		return d / l
	default:
		return 1
	}
}
