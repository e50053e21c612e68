// SPDX-License-Identifier: EPL-2.0

package syncgroup

import (
	"fmt"
	"strings"
)

// Mode says how a member may be bent to fit the group length.
type Mode uint8

const (
	// Repeat loops the member until the group period ends instead of playing
	// it once per period.
	Repeat Mode = 1 << iota
	// Stretch allows slowing the member down to lengthen it.
	Stretch
	// Squeeze allows speeding the member up to shorten it.
	Squeeze

	Fit = Stretch | Squeeze
)

func (m Mode) Has(bits Mode) bool { return m&bits == bits }

func (m Mode) String() string {
	if m == 0 {
		return "once"
	}

	var parts []string
	if m.Has(Repeat) {
		parts = append(parts, "repeat")
	}
	switch {
	case m.Has(Fit):
		parts = append(parts, "fit")
	case m.Has(Stretch):
		parts = append(parts, "stretch")
	case m.Has(Squeeze):
		parts = append(parts, "squeeze")
	}
	return strings.Join(parts, "|")
}

// ParseMode reads a list of mode words separated by '|', ',' or spaces,
// e.g. "repeat|fit". "once" and the empty string mean no bits.
func ParseMode(s string) (Mode, error) {
	var m Mode

	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
	for _, w := range words {
		switch w {
		case "once":
		case "repeat":
			m |= Repeat
		case "stretch":
			m |= Stretch
		case "squeeze":
			m |= Squeeze
		case "fit":
			m |= Fit
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownMode, w)
		}
	}
	return m, nil
}
