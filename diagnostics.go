// SPDX-License-Identifier: EPL-2.0

package ambience

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ik5/ambience/sequence"
)

// TrackInfo describes one live track.
type TrackInfo struct {
	Name     string
	Sequence *sequence.Sequence
	Clip     string
	Fade     float64
	Volume   float64
	OneShot  bool
	Delaying bool
	// Delegated tracks play through the output device.
	Delegated bool
}

func (i TrackInfo) String() string {
	kind := "loop"
	if i.OneShot {
		kind = "one-shot"
	}
	return fmt.Sprintf("%s (%s) clip=%q fade=%.2f volume=%.2f", i.Name, kind, i.Clip, i.Fade, i.Volume)
}

// BlockedInfo describes a Sequence that is in range but not playing.
type BlockedInfo struct {
	Name     string
	Sequence *sequence.Sequence
	// Fade is the spatial fade it would otherwise have.
	Fade   float64
	Reason string
}

func (b BlockedInfo) String() string {
	return fmt.Sprintf("%s: %s", b.Name, b.Reason)
}

// Tracks lists the live tracks in the order they started.
func (m *Manager) Tracks() []TrackInfo {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	infos := make([]TrackInfo, 0, len(m.order))
	for _, k := range m.order {
		infos = append(infos, m.infoLocked(m.tracks[k]))
	}
	return infos
}

func (m *Manager) infoLocked(l *live) TrackInfo {
	unlock := m.lockFor(l)
	defer unlock()

	return TrackInfo{
		Name:      l.key.seq.Name,
		Sequence:  l.key.seq,
		Clip:      l.t.Clip(),
		Fade:      l.t.Fade(),
		Volume:    l.t.Volume(),
		OneShot:   l.key.oneShot,
		Delaying:  l.t.Delaying(),
		Delegated: l.route == delegated,
	}
}

// Blocked lists the Sequences that were in range on the last tick but could
// not play, with the reason.
func (m *Manager) Blocked() []BlockedInfo {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	return slices.Clone(m.blocked)
}

// Unblock forces s to play at full fade regardless of zones and
// requirements, until Reblock.
func (m *Manager) Unblock(s *sequence.Sequence) {
	if s == nil {
		return
	}

	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.forced[s] = true
	m.checkLocked(s)
}

func (m *Manager) Reblock(s *sequence.Sequence) {
	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	delete(m.forced, s)
}

func (m *Manager) forcedLocked() []*sequence.Sequence {
	out := make([]*sequence.Sequence, 0, len(m.forced))
	for s := range m.forced {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *sequence.Sequence) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// OnTrackStarted registers fn to run, on the control loop, whenever a track
// starts.
func (m *Manager) OnTrackStarted(fn func(TrackInfo)) {
	if fn == nil {
		return
	}

	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.onStarted = append(m.onStarted, fn)
}

// OnTrackStopped registers fn to run, on the control loop, whenever a track
// is removed.
func (m *Manager) OnTrackStopped(fn func(TrackInfo)) {
	if fn == nil {
		return
	}

	m.ctlMu.Lock()
	defer m.ctlMu.Unlock()

	m.onStopped = append(m.onStopped, fn)
}

func (m *Manager) notifyLocked(fns []func(TrackInfo), info TrackInfo) {
	for _, fn := range fns {
		m.safeCall(fn, info)
	}
}

// safeCall runs one observer; a panic is logged and swallowed.
func (m *Manager) safeCall(fn func(TrackInfo), info TrackInfo) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("track observer panicked", "sequence", info.Name, "panic", r)
		}
	}()

	fn(info)
}
