// SPDX-License-Identifier: EPL-2.0

package sequence

import (
	"fmt"
	"sync/atomic"

	"github.com/ik5/ambience/requirement"
	"github.com/ik5/ambience/syncgroup"
)

// ClipRef names one clip of a Sequence.
type ClipRef struct {
	ID   string
	Gain float64
	// Weight biases randomized ordering; zero counts as 1.
	Weight float64
}

// EffectiveWeight is Weight, with zero and below counting as 1.
func (c ClipRef) EffectiveWeight() float64 {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}

// Output selects the render path of a Sequence.
type Output int

const (
	// Integrated tracks are mixed in software by the Manager.
	Integrated Output = iota
	// Spatial tracks are handed to the delegated output device and placed
	// around the listener.
	Spatial
)

func (o Output) String() string {
	if o == Spatial {
		return "spatial"
	}
	return "integrated"
}

// Span is an inclusive random range.
type Span struct {
	Min, Max float64
}

// Placement is the authored position of free-floating spatial output.
// Angles are in degrees, 0 ahead of the listener and positive to the right.
type Placement struct {
	AngleMin, AngleMax       float64
	DistanceMin, DistanceMax float64
	// Attached pins output to the owning zone's centre instead of a random
	// position.
	Attached bool
}

// Zero reports whether nothing was authored.
func (p Placement) Zero() bool {
	return p == Placement{}
}

// Timing holds the time-based authoring of a Sequence. All durations are in
// seconds; DelayChance is a percentage.
type Timing struct {
	Crossfade   float64
	FadeIn      float64
	FadeOut     float64
	VolumeFade  float64
	SpeedFade   float64
	DelayChance float64
	DelayMin    float64
	DelayMax    float64
	DelayFade   float64
	// OneShot plays a single clip and finishes instead of looping. It plays
	// again only after its fade has dropped to zero.
	OneShot bool
}

// Sequence is an authored playback unit: a clip set plus the rules for
// playing it.
//
// Authored fields may be edited freely while the Sequence is not registered
// with a Manager. Everything a playing track needs is copied into Params by
// Recompute, so edits only take effect on the next Recompute.
type Sequence struct {
	Name   string
	Clips  []ClipRef
	Volume float64
	// Speed is the base playback rate; zero means 1.
	Speed float64

	RandomizeOrder  bool
	RandomizeVolume bool
	VolumeRandom    Span
	RandomizeSpeed  bool
	SpeedRandom     Span

	Timing

	Modifiers   []Modifier
	Requirement requirement.Requirement

	SyncGroup string
	SyncMode  syncgroup.Mode

	EventsWhilePlaying []string
	ValuesWhilePlaying map[string]float64

	Output    Output
	Placement Placement

	params  atomic.Pointer[Params]
	version uint64
}

// New returns a Sequence with unit volume and speed.
func New(name string, clips ...ClipRef) *Sequence {
	for i := range clips {
		if clips[i].Gain == 0 {
			clips[i].Gain = 1
		}
	}
	return &Sequence{Name: name, Clips: clips, Volume: 1, Speed: 1}
}

// Params returns the last snapshot published by Recompute, or nil before the
// first one.
func (s *Sequence) Params() *Params {
	return s.params.Load()
}

func (s *Sequence) String() string {
	return fmt.Sprintf("sequence %q", s.Name)
}
