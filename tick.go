// SPDX-License-Identifier: EPL-2.0

package ambience

import (
	"math"
	"slices"

	"github.com/ik5/ambience/sequence"
	"github.com/ik5/ambience/track"
	"github.com/ik5/ambience/zone"
)

type fadeSource struct {
	fade float64
	zone *zone.Zone
}

// Tick runs one control step for a listener at pos: it publishes finished
// decodes, runs due deferred tasks, resolves every Sequence's fade and
// reconciles the live tracks. dt is the time since the previous tick in
// seconds; tracks advance on rendered audio, so it is only informational.
func (m *Manager) Tick(dt float64, pos zone.Vec3) {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.tick++
	m.listener = pos

	loaded := m.cache.Poll()
	m.deferred.run(m.tick)

	order, fades := m.resolveFadesLocked(pos)

	m.state.SetOverlay(m.overlayLocked())
	dirty := loaded > 0 || m.state.Version() != m.lastState
	m.lastState = m.state.Version()

	m.blocked = m.blocked[:0]
	for _, s := range order {
		if dirty || !m.known[s] || s.Params() == nil {
			m.recomputeLocked(s)
			m.known[s] = true
		}
		m.reconcileLocked(s, fades[s])
	}
	for s := range m.spent {
		if _, ok := fades[s]; !ok {
			delete(m.spent, s)
		}
	}

	m.oneShotsLocked(dirty)
	m.routeLocked()
	m.placeLocked()
	m.reapLocked()

	if dt < 0 {
		m.log.Debug("negative tick delta", "dt", dt)
	}
}

// resolveFadesLocked returns every Sequence that matters this tick, in a
// stable order, with the strongest fade any source gives it.
func (m *Manager) resolveFadesLocked(pos zone.Vec3) ([]*sequence.Sequence, map[*sequence.Sequence]fadeSource) {
	fades := make(map[*sequence.Sequence]fadeSource)
	var order []*sequence.Sequence

	offer := func(s *sequence.Sequence, f float64, z *zone.Zone) {
		if s == nil {
			return
		}
		cur, seen := fades[s]
		if !seen {
			order = append(order, s)
		}
		if !seen || f > cur.fade {
			fades[s] = fadeSource{fade: f, zone: z}
		}
	}

	for _, z := range m.zones {
		f := z.Fade(pos)
		for _, s := range z.Sequences {
			offer(s, f, z)
		}
	}
	for _, s := range m.globals {
		offer(s, 1, fades[s].zone)
	}
	for _, s := range m.forcedLocked() {
		offer(s, 1, fades[s].zone)
	}
	for _, k := range m.order {
		if !m.tracks[k].fired {
			offer(k.seq, 0, nil)
		}
	}

	return order, fades
}

// overlayLocked collects the values-while-playing of every live track.
func (m *Manager) overlayLocked() map[string]float64 {
	var overlay map[string]float64
	for _, k := range m.order {
		for name, v := range k.seq.ValuesWhilePlaying {
			if overlay == nil {
				overlay = make(map[string]float64)
			}
			overlay[name] = max(overlay[name], v)
		}
	}
	return overlay
}

func (m *Manager) recomputeLocked(s *sequence.Sequence) *sequence.Params {
	return s.Recompute(sequence.Env{
		Evaluator: m.state,
		Durations: m.duration,
		Sync:      m.sync,
	})
}

func (m *Manager) duration(id string) float64 {
	if b := m.cache.GetBuffer(id); b != nil {
		return b.Duration()
	}
	return 0
}

// reconcileLocked pushes the resolved fade of s into its track, starting
// one when s becomes playable. A one-shot Sequence plays once each time its
// fade rises from zero.
func (m *Manager) reconcileLocked(s *sequence.Sequence, src fadeSource) {
	p := s.Params()

	activation := p.Activation
	if m.forced[s] {
		activation = 1
	}
	target := src.fade * activation
	if !m.enabled {
		target = 0
	}

	if target <= 0 {
		delete(m.spent, s)
	}

	key := trackKey{seq: s, oneShot: s.OneShot}
	l, ok := m.tracks[key]
	switch {
	case ok && l.fired:
		return
	case ok:
		unlock := m.lockFor(l)
		playing := l.t.UpdateTrackData(p, target)
		unlock()
		if src.zone != nil {
			l.zone = src.zone
		}
		if !playing && target > 0 {
			m.blockLocked(s, src.fade, noClipsReason(p))
			return
		}
	case target > 0 && !m.spent[s]:
		if !m.startLocked(key, p, target, src.zone) {
			m.blockLocked(s, src.fade, noClipsReason(p))
			return
		}
		if s.OneShot {
			m.spent[s] = true
		}
	}

	switch {
	case src.fade <= 0:
	case !m.enabled:
		m.blockLocked(s, src.fade, "manager disabled")
	case len(p.Clips) == 0:
		m.blockLocked(s, src.fade, "no clips")
	case activation <= 0:
		m.blockLocked(s, src.fade, "requirements not met: "+m.state.Explain(s.Requirement))
	}
}

func noClipsReason(p *sequence.Params) string {
	if len(p.Clips) == 0 {
		return "no clips"
	}
	return "no playable clips"
}

func (m *Manager) blockLocked(s *sequence.Sequence, fade float64, reason string) {
	m.blocked = append(m.blocked, BlockedInfo{Sequence: s, Name: s.Name, Fade: fade, Reason: reason})
}

// startLocked creates the track for key. It reports false when p has
// nothing that could play.
func (m *Manager) startLocked(key trackKey, p *sequence.Params, target float64, z *zone.Zone) bool {
	t := track.New(track.Options{
		Sequence: key.seq,
		OneShot:  key.oneShot,
		Buffers:  m.cache,
		Rand:     m.newTrackRand(),
	})
	if !t.UpdateTrackData(p, target) {
		return false
	}

	l := &live{key: key, t: t, zone: z}
	l.route = m.routeFor(l)
	m.insertLocked(l)

	m.tracks[key] = l
	m.order = append(m.order, key)

	l.events = slices.Clone(key.seq.EventsWhilePlaying)
	for _, e := range l.events {
		m.state.HoldEvent(e)
	}
	if g := key.seq.SyncGroup; g != "" {
		l.synced = g
		m.sync.Join(g, t)
	}

	m.log.Debug("track started", "sequence", key.seq.Name, "one_shot", key.oneShot, "route", l.route)
	m.notifyLocked(m.onStarted, m.infoLocked(l))
	return true
}

// oneShotsLocked keeps fired one-shot targets in line with the enabled
// state and finalizes one-shots that stayed silent for too long.
func (m *Manager) oneShotsLocked(dirty bool) {
	for _, k := range m.order {
		if !k.oneShot {
			continue
		}
		l := m.tracks[k]

		var p *sequence.Params
		if l.fired {
			p = k.seq.Params()
			if dirty {
				p = m.recomputeLocked(k.seq)
			}
		}
		target := 1.0
		if !m.enabled {
			target = 0
		}

		unlock := m.lockFor(l)
		if p != nil && (target == 0 || l.t.FadeTarget() > 0) {
			l.t.UpdateTrackData(p, target)
		}
		if !l.t.Finished() && l.t.WaitTick() >= m.oneShotTimeout {
			l.t.Finalize()
			m.log.Info("one-shot timed out before playing", "sequence", k.seq.Name, "ticks", m.oneShotTimeout)
		}
		unlock()
	}
}

// reapLocked drops tracks that finished or faded out completely.
func (m *Manager) reapLocked() {
	kept := m.order[:0]
	var gone []*live

	for _, k := range m.order {
		l := m.tracks[k]

		unlock := m.lockFor(l)
		done := l.t.Removable()
		if done {
			m.removeFromListLocked(l)
		}
		unlock()

		if done {
			gone = append(gone, l)
			continue
		}
		kept = append(kept, k)
	}
	m.order = kept

	for _, l := range gone {
		delete(m.tracks, l.key)
		for _, e := range l.events {
			m.state.ReleaseEvent(e)
		}
		if l.synced != "" {
			m.sync.Leave(l.synced, l.t)
		}
		if l.voice != nil {
			m.detachLocked(l)
		}

		m.log.Debug("track stopped", "sequence", l.key.seq.Name, "one_shot", l.key.oneShot)
		m.notifyLocked(m.onStopped, m.infoLocked(l))
	}
}

// placeLocked positions delegated output around the listener. Attached
// output follows its zone; free-floating output gets a random position
// once.
func (m *Manager) placeLocked() {
	if m.delegate == nil {
		return
	}

	for _, k := range m.order {
		l := m.tracks[k]
		if l.route != delegated || l.voice == nil || !l.voice.attached {
			continue
		}

		placement := k.seq.Placement
		if placement.Zero() && l.zone != nil {
			placement = l.zone.Placement
		}

		switch {
		case placement.Attached && l.zone != nil:
			d := l.zone.Center.Sub(m.listener)
			l.angle = math.Atan2(d.X, d.Z) * 180 / math.Pi
			l.distance = d.Len()
		case !l.placed:
			l.angle = between(m.rng.Float64(), placement.AngleMin, placement.AngleMax)
			l.distance = between(m.rng.Float64(), placement.DistanceMin, placement.DistanceMax)
			l.placed = true
		default:
			continue
		}

		m.delegate.Place(l.voice, l.angle, l.distance)
	}
}

func between(r, lo, hi float64) float64 {
	return lo + r*(hi-lo)
}
