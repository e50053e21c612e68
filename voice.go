// SPDX-License-Identifier: EPL-2.0

package ambience

import (
	"slices"

	"github.com/ik5/ambience/pcmcache"
	"github.com/ik5/ambience/sequence"
	"github.com/ik5/ambience/track"
)

// Delegate plays tracks that are not mixed by RenderBuffer: spatial
// sequences and clips that can only be streamed.
//
// The Manager calls Delegate methods from its control loop and never while
// holding the lock that Voice.Fill takes, so a Delegate may hold its own lock
// while filling voices.
type Delegate interface {
	Attach(v Voice)
	Detach(v Voice)
	// Place positions v relative to the listener. angle is in degrees, 0
	// ahead and positive to the right.
	Place(v Voice, angle, distance float64)
}

// Voice is a delegated track as seen by a Delegate.
type Voice interface {
	Name() string
	// Fill produces frames of interleaved audio into dst. A voice that
	// renders its own PCM overwrites dst; a streaming voice expects dst to
	// hold the decoded stream and scales it in place.
	Fill(dst []float32, frames, channels, rate int)
	// Stream returns the asset a streaming voice plays.
	Stream() (pcmcache.Asset, bool)
	// OneShot voices play their stream once; others loop it.
	OneShot() bool
	PlaybackSpeed() float64
	// Finish reports that a one-shot stream reached its end.
	Finish()
}

type voice struct {
	m       *Manager
	t       *track.Track
	name    string
	oneShot bool
	ownsPCM bool
	asset   pcmcache.Asset
	stream  bool

	// guarded by delegMu
	gone bool
	// control loop only
	attached bool
}

func (m *Manager) newVoice(l *live) *voice {
	v := &voice{
		m:       m,
		t:       l.t,
		name:    l.key.seq.Name,
		oneShot: l.key.oneShot,
		ownsPCM: !l.t.Delegated(),
	}
	if !v.ownsPCM {
		v.asset, v.stream = l.t.StreamAsset()
	}
	return v
}

func (v *voice) Name() string                   { return v.name }
func (v *voice) OneShot() bool                  { return v.oneShot }
func (v *voice) Stream() (pcmcache.Asset, bool) { return v.asset, v.stream }

func (v *voice) Fill(dst []float32, frames, channels, rate int) {
	if channels <= 0 {
		return
	}
	frames = min(frames, len(dst)/channels)
	n := frames * channels

	m := v.m
	m.delegMu.Lock()
	defer m.delegMu.Unlock()

	if v.gone || m.paused.Load() {
		clear(dst[:n])
		return
	}

	b := track.Block{
		Frames:       frames,
		Channels:     channels,
		Rate:         rate,
		GlobalVolume: m.globalVolume(),
		Now:          m.Now(),
	}
	v.t.Filter(dst, &b, v.ownsPCM)
}

func (v *voice) PlaybackSpeed() float64 {
	v.m.delegMu.Lock()
	defer v.m.delegMu.Unlock()

	return v.t.PlaybackSpeed()
}

func (v *voice) Finish() {
	v.m.delegMu.Lock()
	defer v.m.delegMu.Unlock()

	v.t.Finalize()
}

// routeFor decides which list l's track belongs in. Spatial sequences fall
// back to the software mixer when there is no Delegate.
func (m *Manager) routeFor(l *live) route {
	if l.t.Delegated() {
		return delegated
	}
	if l.key.seq.Output == sequence.Spatial && m.delegate != nil {
		return delegated
	}
	return integrated
}

func (m *Manager) insertLocked(l *live) {
	if l.route == delegated {
		l.voice = m.newVoice(l)
		m.delegMu.Lock()
		m.deleg = append(m.deleg, l.voice)
		m.delegMu.Unlock()
		m.scheduleAttachLocked(l.voice)
		return
	}

	m.mixMu.Lock()
	m.mix = append(m.mix, l.t)
	m.mixMu.Unlock()
}

// removeFromListLocked drops l's track from its list. The caller holds that
// list's lock.
func (m *Manager) removeFromListLocked(l *live) {
	if l.route == delegated {
		m.deleg = slices.DeleteFunc(m.deleg, func(v *voice) bool { return v == l.voice })
		if l.voice != nil {
			l.voice.gone = true
		}
		return
	}
	m.mix = slices.DeleteFunc(m.mix, func(t *track.Track) bool { return t == l.t })
}

// scheduleAttachLocked hands v to the Delegate on the next tick, once the
// track had a chance to settle its first parameters.
func (m *Manager) scheduleAttachLocked(v *voice) {
	if m.delegate == nil {
		m.log.Warn("no output device for delegated track, it stays silent", "sequence", v.name)
		return
	}

	m.deferred.schedule(m.tick+1, func() {
		if v.gone || v.attached {
			return
		}
		m.delegate.Attach(v)
		v.attached = true
	})
}

func (m *Manager) detachLocked(l *live) {
	v := l.voice
	l.voice = nil
	if v == nil {
		return
	}
	if v.attached && m.delegate != nil {
		m.delegate.Detach(v)
	}
	v.attached = false
}

// routeLocked moves tracks whose routing changed, for instance after a
// modifier swapped in a streaming clip.
func (m *Manager) routeLocked() {
	for _, k := range m.order {
		l := m.tracks[k]
		want := m.routeFor(l)
		if want == l.route {
			continue
		}

		old := l.voice

		m.mixMu.Lock()
		m.delegMu.Lock()
		m.removeFromListLocked(l)
		l.route = want
		if want == delegated {
			l.voice = m.newVoice(l)
			m.deleg = append(m.deleg, l.voice)
		} else {
			m.mix = append(m.mix, l.t)
		}
		m.delegMu.Unlock()
		m.mixMu.Unlock()

		if old != nil {
			if old.attached && m.delegate != nil {
				m.delegate.Detach(old)
			}
			old.attached = false
			if want == integrated {
				l.voice = nil
			}
		}
		if want == delegated {
			l.placed = false
			m.scheduleAttachLocked(l.voice)
		}

		m.log.Debug("track rerouted", "sequence", k.seq.Name, "route", want)
	}
}
