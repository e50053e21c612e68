// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Planar is fully decoded PCM with one slice per channel.
type Planar struct {
	Data       [][]float32
	SampleRate int
}

// Channels returns the number of channel slices.
func (p *Planar) Channels() int { return len(p.Data) }

// Frames returns the number of sample frames per channel.
func (p *Planar) Frames() int {
	if len(p.Data) == 0 {
		return 0
	}
	return len(p.Data[0])
}

// Duration in seconds at the natural sample rate.
func (p *Planar) Duration() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(p.Frames()) / float64(p.SampleRate)
}

// ReadPlanar drains src and splits its interleaved stream into channels.
// maxFrames <= 0 means no limit; a longer source yields ErrTooLong.
func ReadPlanar(src Source, maxFrames int) (*Planar, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	bufSize := src.BufSize()
	if bufSize < channels {
		bufSize = 4096
	}
	bufSize -= bufSize % channels

	out := &Planar{
		Data:       make([][]float32, channels),
		SampleRate: src.SampleRate(),
	}
	if fc, ok := src.(FrameCounter); ok {
		if total := fc.TotalFrames(); total > 0 && (maxFrames <= 0 || total <= int64(maxFrames)) {
			for c := range out.Data {
				out.Data[c] = make([]float32, 0, total)
			}
		}
	}

	buf := make([]float32, bufSize)
	// Decoders may hand back a partial frame; carry it into the next read.
	carry := 0

	for {
		got, err := src.ReadSamples(buf[carry:])
		n := got + carry
		frames := n / channels

		for f := range frames {
			base := f * channels
			for c := range channels {
				out.Data[c] = append(out.Data[c], buf[base+c])
			}
		}

		carry = n - frames*channels
		if carry > 0 {
			copy(buf, buf[frames*channels:n])
		}

		if maxFrames > 0 && out.Frames() > maxFrames {
			return nil, fmt.Errorf("%w: more than %d frames", ErrTooLong, maxFrames)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		if got == 0 {
			// A source returning nothing without EOF is treated as finished.
			break
		}
	}

	return out, nil
}
