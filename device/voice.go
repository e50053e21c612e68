// SPDX-License-Identifier: EPL-2.0

package device

import (
	"github.com/gopxl/beep/v2/effects"

	"github.com/ik5/ambience"
)

// voiceStreamer adapts an ambience.Voice to beep. All fields are guarded by
// Device.mu, which beep holds for us while streaming.
type voiceStreamer struct {
	v    ambience.Voice
	rate int
	buf  []float32

	streaming bool
	stream    *stream
	// ended is set once a one-shot stream ran out.
	ended bool
	done  bool

	volume *effects.Volume
	pan    *effects.Pan
}

func (vs *voiceStreamer) Stream(samples [][2]float64) (int, bool) {
	if vs.done {
		return 0, false
	}

	for off := 0; off < len(samples); {
		n := min(len(samples)-off, len(vs.buf)/2)
		buf := vs.buf[:n*2]
		if vs.streaming {
			vs.read(buf)
		} else {
			clear(buf)
		}
		vs.v.Fill(buf, n, 2, vs.rate)

		out := samples[off : off+n]
		for i := range out {
			out[i][0] = float64(buf[i*2])
			out[i][1] = float64(buf[i*2+1])
		}
		off += n
	}

	return len(samples), true
}

func (vs *voiceStreamer) Err() error { return nil }

// read fills buf with the decoded stream at the track's current speed,
// looping unless the voice is a one-shot.
func (vs *voiceStreamer) read(buf []float32) {
	if vs.stream == nil || vs.ended {
		clear(buf)
		return
	}

	vs.stream.SetSpeed(vs.v.PlaybackSpeed())
	n, err := vs.stream.Read(buf, !vs.v.OneShot())
	clear(buf[n:])
	if err == nil {
		return
	}

	if vs.v.OneShot() {
		vs.ended = true
		vs.v.Finish()
		return
	}
	// a looping stream that cannot produce audio goes quiet for good
	vs.ended = true
}
