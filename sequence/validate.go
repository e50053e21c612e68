// SPDX-License-Identifier: EPL-2.0

package sequence

import (
	"errors"
	"fmt"
)

// Validate returns the configuration warnings of the Sequence. None of them
// stop it from being registered; they are surfaced through diagnostics.
func (s *Sequence) Validate() []error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, ErrUnnamedSequence)
	}
	if len(s.Clips) == 0 {
		errs = append(errs, ErrNoClips)
	}
	for i, c := range s.Clips {
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("%w: clip %d", ErrEmptyClipID, i))
		}
	}

	if s.DelayChance < 0 || s.DelayChance > 100 {
		errs = append(errs, fmt.Errorf("%w: %.3g", ErrBadDelayChance, s.DelayChance))
	}
	if s.DelayMin > s.DelayMax {
		errs = append(errs, fmt.Errorf("%w: %.3g > %.3g", ErrBadDelayRange, s.DelayMin, s.DelayMax))
	}
	for _, d := range []struct {
		name string
		v    float64
	}{
		{"crossfade", s.Crossfade},
		{"fade in", s.FadeIn},
		{"fade out", s.FadeOut},
		{"volume fade", s.VolumeFade},
		{"speed fade", s.SpeedFade},
		{"delay min", s.DelayMin},
		{"delay fade", s.DelayFade},
	} {
		if d.v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNegativeDuration, d.name))
		}
	}

	if s.RandomizeVolume && s.VolumeRandom.Min > s.VolumeRandom.Max {
		errs = append(errs, fmt.Errorf("%w: volume", ErrBadRandomRange))
	}
	if s.RandomizeSpeed && s.SpeedRandom.Min > s.SpeedRandom.Max {
		errs = append(errs, fmt.Errorf("%w: speed", ErrBadRandomRange))
	}

	if err := s.Requirement.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, m := range s.Modifiers {
		if err := m.Requirement.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("modifier %q: %w", m.Name, err))
		}
	}

	return errs
}

// Warning joins the configuration warnings into one error, or nil.
func (s *Sequence) Warning() error {
	return errors.Join(s.Validate()...)
}
