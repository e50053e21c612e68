// SPDX-License-Identifier: EPL-2.0

package sequence

import (
	"fmt"
	"strings"

	"github.com/ik5/ambience/requirement"
)

// ClipEdit is how a Modifier changes the clip list.
type ClipEdit int

const (
	NoEdit ClipEdit = iota
	Replace
	Add
	Remove
)

func (e ClipEdit) String() string {
	switch e {
	case NoEdit:
		return "none"
	case Replace:
		return "replace"
	case Add:
		return "add"
	case Remove:
		return "remove"
	default:
		return fmt.Sprintf("edit(%d)", int(e))
	}
}

func ParseClipEdit(s string) (ClipEdit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoEdit, nil
	case "replace":
		return Replace, nil
	case "add":
		return Add, nil
	case "remove":
		return Remove, nil
	default:
		return NoEdit, fmt.Errorf("%w: %q", ErrUnknownClipEdit, s)
	}
}

// Modifier conditionally overrides Sequence parameters. Nil fields are left
// alone.
type Modifier struct {
	Name        string
	Requirement requirement.Requirement

	Volume *float64
	Speed  *float64

	RandomizeOrder  *bool
	RandomizeVolume *bool
	RandomizeSpeed  *bool

	Edit  ClipEdit
	Clips []ClipRef
}

// StepThreshold is the activation at which clip edits and toggles switch on.
const StepThreshold = 0.5

func (m *Modifier) applyToggles(p *Params, activation float64) {
	if activation < StepThreshold {
		return
	}
	if m.RandomizeOrder != nil {
		p.RandomizeOrder = *m.RandomizeOrder
	}
	if m.RandomizeVolume != nil {
		p.RandomizeVolume = *m.RandomizeVolume
	}
	if m.RandomizeSpeed != nil {
		p.RandomizeSpeed = *m.RandomizeSpeed
	}
}

func (m *Modifier) applyClips(clips []ClipRef, activation float64) []ClipRef {
	if activation < StepThreshold || m.Edit == NoEdit {
		return clips
	}

	switch m.Edit {
	case Replace:
		return append(clips[:0], m.Clips...)
	case Add:
		return append(clips, m.Clips...)
	case Remove:
		out := clips[:0]
		for _, c := range clips {
			if !containsID(m.Clips, c.ID) {
				out = append(out, c)
			}
		}
		return out
	default:
		return clips
	}
}

func containsID(clips []ClipRef, id string) bool {
	for _, c := range clips {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Float and Bool build override pointers for Modifier literals.
func Float(v float64) *float64 { return &v }
func Bool(v bool) *bool        { return &v }
