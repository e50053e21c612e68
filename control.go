// SPDX-License-Identifier: EPL-2.0

package ambience

import (
	"context"
	"math"
	"slices"

	"github.com/ik5/ambience/sequence"
	"github.com/ik5/ambience/zone"
)

// RegisterZone adds z; registering it twice has no effect.
func (m *Manager) RegisterZone(z *zone.Zone) {
	if z == nil {
		return
	}

	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	if !slices.Contains(m.zones, z) {
		m.zones = append(m.zones, z)
		for _, s := range z.Sequences {
			m.checkLocked(s)
		}
	}
}

// UnregisterZone removes z. Its tracks fade out on the following ticks.
func (m *Manager) UnregisterZone(z *zone.Zone) {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.zones = slices.DeleteFunc(m.zones, func(o *zone.Zone) bool { return o == z })
}

// AddSequence makes s play everywhere, subject to its requirements.
func (m *Manager) AddSequence(s *sequence.Sequence) {
	if s == nil {
		return
	}

	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	if !slices.Contains(m.globals, s) {
		m.globals = append(m.globals, s)
		m.checkLocked(s)
	}
}

// RemoveSequence undoes AddSequence. The track fades out over the
// Sequence's FadeOut and is then dropped.
func (m *Manager) RemoveSequence(s *sequence.Sequence) {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.globals = slices.DeleteFunc(m.globals, func(o *sequence.Sequence) bool { return o == s })
}

// checkLocked logs configuration warnings once per Sequence.
func (m *Manager) checkLocked(s *sequence.Sequence) {
	if s == nil || m.warnedSeqs[s] {
		return
	}
	m.warnedSeqs[s] = true
	for _, err := range s.Validate() {
		m.log.Warn("sequence configuration", "sequence", s.Name, "err", err)
	}
}

// SetValue stores a named value clamped to [0, 1] and returns it.
func (m *Manager) SetValue(name string, v float64) float64 {
	return m.state.SetValue(name, v)
}

func (m *Manager) RemoveValue(name string) { m.state.RemoveValue(name) }

// Value reports the effective value of name and whether it is set.
func (m *Manager) Value(name string) (float64, bool) { return m.state.Value(name) }

func (m *Manager) ActivateEvent(name string)   { m.state.ActivateEvent(name) }
func (m *Manager) DeactivateEvent(name string) { m.state.DeactivateEvent(name) }

// EventActive reports whether name is active or held by a playing track.
func (m *Manager) EventActive(name string) bool { return m.state.EventActive(name) }

// Enable lets sequences play again after Disable.
func (m *Manager) Enable() {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.enabled = true
}

// Disable fades every track out and keeps new ones from starting.
func (m *Manager) Disable() {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.enabled = false
}

func (m *Manager) Enabled() bool {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	return m.enabled
}

// Pause silences output and freezes every track where it is.
func (m *Manager) Pause()       { m.paused.Store(true) }
func (m *Manager) Resume()      { m.paused.Store(false) }
func (m *Manager) Paused() bool { return m.paused.Load() }

// SetGlobalVolume scales the whole mix. Negative values count as 0.
func (m *Manager) SetGlobalVolume(v float64) {
	m.volume.Store(math.Float64bits(max(v, 0)))
}

func (m *Manager) GlobalVolume() float64 { return m.globalVolume() }

// Preload decodes clips ahead of use and blocks until they settle.
func (m *Manager) Preload(ctx context.Context, clips ...string) error {
	return m.cache.Preload(ctx, clips...)
}

// PreloadSequence preloads every clip s or its modifiers may play.
func (m *Manager) PreloadSequence(ctx context.Context, s *sequence.Sequence) error {
	if s == nil {
		return nil
	}
	return m.cache.Preload(ctx, clipIDs(s)...)
}

func clipIDs(s *sequence.Sequence) []string {
	var ids []string
	add := func(refs []sequence.ClipRef) {
		for _, c := range refs {
			if c.ID != "" && !slices.Contains(ids, c.ID) {
				ids = append(ids, c.ID)
			}
		}
	}

	add(s.Clips)
	for _, mod := range s.Modifiers {
		add(mod.Clips)
	}
	return ids
}

// PlayOneShot fires clip once at volume. Firing a clip that is still
// playing restarts it.
func (m *Manager) PlayOneShot(clip string, volume float64) {
	if clip == "" {
		return
	}

	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	s, ok := m.clipSeqs[clip]
	if !ok {
		s = sequence.New(clip, sequence.ClipRef{ID: clip, Gain: 1})
		m.clipSeqs[clip] = s
	}
	s.Volume = max(volume, 0)

	m.fireLocked(s)
}

// PlaySequenceOnce plays a single clip of s once, ignoring its
// requirements.
func (m *Manager) PlaySequenceOnce(s *sequence.Sequence) {
	if s == nil {
		return
	}

	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.checkLocked(s)
	m.fireLocked(s)
}

func (m *Manager) fireLocked(s *sequence.Sequence) {
	p := m.recomputeLocked(s)
	key := trackKey{seq: s, oneShot: true}

	if l, ok := m.tracks[key]; ok {
		unlock := m.lockFor(l)
		l.t.Restart()
		l.t.UpdateTrackData(p, 1)
		unlock()
		l.fired = true
		return
	}

	if !m.enabled {
		return
	}
	if m.startLocked(key, p, 1, nil) {
		m.tracks[key].fired = true
	}
}
