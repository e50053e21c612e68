// SPDX-License-Identifier: EPL-2.0

package sequence

import (
	"slices"

	"github.com/ik5/ambience/requirement"
	"github.com/ik5/ambience/utils"
)

// Params is the derived, immutable state of a Sequence. Render code only
// ever reads a Params snapshot; Recompute replaces it wholesale.
type Params struct {
	Name  string
	Clips []ClipRef

	Volume float64
	Speed  float64

	RandomizeOrder  bool
	RandomizeVolume bool
	VolumeRandom    Span
	RandomizeSpeed  bool
	SpeedRandom     Span

	Timing

	// Duration of one pass over Clips at Speed, in seconds.
	Duration float64
	// Activation is the Sequence's own requirement fade.
	Activation float64
	// Modifiers holds each modifier's activation, in authored order.
	Modifiers []float64

	SyncGroup string

	// ClipsVersion changes only when the effective clip list does.
	ClipsVersion uint64
}

// UsableClips reports whether the effective list names at least one clip.
func (p *Params) UsableClips() bool {
	return p != nil && len(p.Clips) > 0
}

// Evaluator resolves requirement fades.
type Evaluator interface {
	Evaluate(req requirement.Requirement) float64
}

// DurationFunc returns a clip's natural duration in seconds, or 0 while it
// is unknown.
type DurationFunc func(id string) float64

// Notifier is told when a synced Sequence's duration changed.
type Notifier interface {
	Resync(group string)
}

// Env is what Recompute reads from outside the Sequence.
type Env struct {
	Evaluator Evaluator
	Durations DurationFunc
	Sync      Notifier
}

// Recompute re-derives the Sequence's Params: modifier activations, blended
// volume and speed, stepped toggles and clip edits, and the pass duration.
// It publishes the result and notifies the sync group when the duration
// changed. Calling it again with unchanged inputs yields an equal snapshot.
//
// Recompute must not be called from a render callback.
func (s *Sequence) Recompute(env Env) *Params {
	prev := s.params.Load()

	p := &Params{
		Name:            s.Name,
		Volume:          s.Volume,
		Speed:           s.Speed,
		RandomizeOrder:  s.RandomizeOrder,
		RandomizeVolume: s.RandomizeVolume,
		VolumeRandom:    s.VolumeRandom,
		RandomizeSpeed:  s.RandomizeSpeed,
		SpeedRandom:     s.SpeedRandom,
		Timing:          s.Timing,
		SyncGroup:       s.SyncGroup,
		Activation:      1,
	}
	if p.Speed <= 0 {
		p.Speed = 1
	}

	if env.Evaluator != nil {
		p.Activation = env.Evaluator.Evaluate(s.Requirement)
	}

	clips := slices.Clone(s.Clips)
	p.Modifiers = make([]float64, len(s.Modifiers))

	for i := range s.Modifiers {
		m := &s.Modifiers[i]

		a := 1.0
		if env.Evaluator != nil {
			a = env.Evaluator.Evaluate(m.Requirement)
		}
		a = utils.Clamp01(a)
		p.Modifiers[i] = a

		if m.Volume != nil {
			p.Volume = utils.Lerp(p.Volume, *m.Volume, a)
		}
		if m.Speed != nil && *m.Speed > 0 {
			p.Speed = utils.Lerp(p.Speed, *m.Speed, a)
		}
		m.applyToggles(p, a)
		clips = m.applyClips(clips, a)
	}

	p.Clips = slices.DeleteFunc(clips, func(c ClipRef) bool { return c.ID == "" })
	p.Duration = passDuration(p.Clips, p.Crossfade, p.Speed, env.Durations)

	switch {
	case prev == nil:
		s.version++
	case !slices.Equal(prev.Clips, p.Clips):
		s.version++
	}
	p.ClipsVersion = s.version

	s.params.Store(p)

	if s.SyncGroup != "" && env.Sync != nil && (prev == nil || prev.Duration != p.Duration) {
		env.Sync.Resync(s.SyncGroup)
	}

	return p
}

// passDuration is the sum of clip durations minus the crossfade overlaps,
// scaled by speed. Clips of unknown length are left out.
func passDuration(clips []ClipRef, crossfade, speed float64, durations DurationFunc) float64 {
	if durations == nil || len(clips) == 0 {
		return 0
	}

	var (
		total float64
		n     int
	)
	for _, c := range clips {
		if d := durations(c.ID); d > 0 {
			total += d
			n++
		}
	}
	if n == 0 {
		return 0
	}

	if n > 1 && crossfade > 0 {
		total -= float64(n-1) * crossfade
	}
	return max(total, 0) / speed
}
