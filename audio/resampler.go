// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/ambience/utils"
)

// Resampler streams from src to a target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count. A playback speed can
// be applied on top of the rate conversion, which is how delegated voices
// follow a track's pitch.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames consumed per output frame at speed 1
	speed    float64
	channels int

	// window[0] = t-1, window[1] = t0, window[2] = t+1, window[3] = t+2
	window [4][]float32
	filled int // real frames pushed so far, saturates at 4
	primed bool

	pos float64 // fractional position between window[1] and window[2]

	srcBuf  []float32
	srcLen  int
	srcNext int
	eof     bool
	drained int // frames of padding pushed after EOF

	// one-pole low-pass applied when downsampling
	lowpass bool
	lpState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		speed:    1,
		channels: channels,
		srcBuf:   make([]float32, 1024*max(channels, 1)),
		lowpass:  ratio > 1.0,
		lpState:  make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// SetSpeed scales playback speed; values <= 0 are ignored.
func (r *Resampler) SetSpeed(speed float64) {
	if speed > 0 {
		r.speed = speed
	}
}

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// push reads one frame from the source into window[3], shifting the rest down.
// After EOF it repeats the last frame twice so the tail can be interpolated.
func (r *Resampler) push() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = first

	if r.srcNext >= r.srcLen && !r.eof {
		n, err := r.src.ReadSamples(r.srcBuf)
		r.srcLen = n - n%r.channels
		r.srcNext = 0
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	if r.srcNext < r.srcLen {
		frame := r.srcBuf[r.srcNext : r.srcNext+r.channels]
		r.srcNext += r.channels
		if r.filled == 0 {
			// start the filter on the first frame to avoid a fade-in transient
			copy(r.lpState, frame)
		}
		for c, v := range frame {
			if r.lowpass {
				v = 0.5*v + 0.5*r.lpState[c]
				r.lpState[c] = v
			}
			r.window[3][c] = v
		}
		if r.filled < 4 {
			r.filled++
		}
		return nil
	}

	if !r.eof {
		// Source returned nothing without EOF; treat as a stall.
		copy(r.window[3], r.window[2])
		return nil
	}

	if r.filled == 0 || r.drained >= 2 {
		return io.EOF
	}
	copy(r.window[3], r.window[2])
	r.drained++
	return nil
}

// prime fills the window so window[1] holds the first source frame.
func (r *Resampler) prime() error {
	for range 3 {
		if err := r.push(); err != nil {
			return err
		}
	}
	copy(r.window[0], r.window[1])
	r.primed = true
	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels == 0 || len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	step := r.ratio * r.speed
	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.push(); err != nil {
				if err == io.EOF {
					if written == 0 {
						return 0, io.EOF
					}
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}

		written++
		r.pos += step
	}

	return written * r.channels, nil
}
