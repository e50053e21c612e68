// SPDX-License-Identifier: EPL-2.0

package requirement

import (
	"fmt"
	"strings"
)

// Mode combines several conditions.
type Mode int

const (
	// All requires every condition.
	All Mode = iota
	// Any requires at least one condition.
	Any
	// None requires that no condition holds.
	None
)

func (m Mode) String() string {
	switch m {
	case All:
		return "all"
	case Any:
		return "any"
	case None:
		return "none"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "all", "any" or "none" (case-insensitive); empty means All.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return All, nil
	case "any":
		return Any, nil
	case "none":
		return None, nil
	default:
		return All, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Range is a slider condition on a named Value.
//
// Inside [Min, Max] it contributes 1. Below Min it falls off linearly to 0
// across MinFalloff, above Max across MaxFalloff. Invert complements the
// result.
type Range struct {
	Name       string
	Min, Max   float64
	MinFalloff float64
	MaxFalloff float64
	Invert     bool
}

// Evaluate returns the contribution of the range for value v.
func (r Range) Evaluate(v float64) float64 {
	var f float64

	switch {
	case v >= r.Min && v <= r.Max:
		f = 1
	case v < r.Min:
		if r.MinFalloff > 0 {
			f = 1 - (r.Min-v)/r.MinFalloff
		}
	default:
		if r.MaxFalloff > 0 {
			f = 1 - (v-r.Max)/r.MaxFalloff
		}
	}

	if f < 0 {
		f = 0
	}
	if r.Invert {
		return 1 - f
	}
	return f
}

// Validate reports authoring mistakes in the range.
func (r Range) Validate() error {
	switch {
	case r.Name == "":
		return ErrUnnamedRange
	case r.Min > r.Max:
		return fmt.Errorf("%w: %s min %.3g > max %.3g", ErrInvertedRange, r.Name, r.Min, r.Max)
	case r.MinFalloff < 0 || r.MaxFalloff < 0:
		return fmt.Errorf("%w: %s", ErrNegativeFalloff, r.Name)
	}
	return nil
}

// Requirement gates a Sequence or Modifier on Values and Events.
type Requirement struct {
	Values    []Range
	ValueMode Mode
	Events    []string
	EventMode Mode
}

// Empty reports whether the requirement has no conditions and is therefore
// always satisfied.
func (r Requirement) Empty() bool {
	return len(r.Values) == 0 && len(r.Events) == 0
}

// Validate returns the first authoring problem found.
func (r Requirement) Validate() error {
	for _, v := range r.Values {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	for _, e := range r.Events {
		if e == "" {
			return ErrUnnamedEvent
		}
	}
	return nil
}
