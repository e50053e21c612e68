// SPDX-License-Identifier: EPL-2.0

package ambience

import "github.com/ik5/ambience/track"

// RenderBuffer fills dst with frames of interleaved audio at the Manager's
// sample rate. It is meant to be called from the host's audio callback: it
// clears dst, then mixes every integrated track into it. While paused it
// writes silence and time stands still.
func (m *Manager) RenderBuffer(dst []float32, frames, channels int) {
	if channels <= 0 || frames <= 0 {
		return
	}
	frames = min(frames, len(dst)/channels)
	clear(dst[:frames*channels])

	if m.paused.Load() {
		return
	}

	b := track.Block{
		Frames:       frames,
		Channels:     channels,
		Rate:         m.rate,
		GlobalVolume: m.globalVolume(),
		Now:          m.Now(),
	}

	m.mixMu.Lock()
	for _, t := range m.mix {
		t.Render(dst, &b)
	}
	m.mixMu.Unlock()

	m.rendered.Add(int64(frames))
}
