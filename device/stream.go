// SPDX-License-Identifier: EPL-2.0

package device

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/pcmcache"
)

// stream decodes an asset on the fly and converts it to stereo at the
// device rate.
type stream struct {
	asset pcmcache.Asset
	dec   audio.Decoder
	rate  int
	speed float64

	rc  io.ReadCloser
	src audio.Source
	rs  *audio.Resampler
	raw []float32
}

func openStream(asset pcmcache.Asset, reg *audio.Registry, rate int) (*stream, error) {
	if asset.Open == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoOpener, asset.ID)
	}

	dec, ok := reg.Get(asset.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrNoDecoder, asset.ID, asset.Format)
	}

	s := &stream{asset: asset, dec: dec, rate: rate, speed: 1}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *stream) open() error {
	rc, err := s.asset.Open()
	if err != nil {
		return fmt.Errorf("opening %q: %w", s.asset.ID, err)
	}

	src, err := s.dec.Decode(rc)
	if err != nil {
		rc.Close()
		return fmt.Errorf("decoding %q: %w", s.asset.ID, err)
	}
	if src.Channels() <= 0 {
		src.Close()
		rc.Close()
		return fmt.Errorf("decoding %q: %w", s.asset.ID, audio.ErrNoChannels)
	}

	s.rc, s.src = rc, src
	s.rs = audio.NewResampler(src, s.rate)
	s.rs.SetSpeed(s.speed)
	if need := maxChunk * src.Channels(); len(s.raw) < need {
		s.raw = make([]float32, need)
	}
	return nil
}

func (s *stream) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	s.speed = speed
	if s.rs != nil {
		s.rs.SetSpeed(speed)
	}
}

// Read fills dst with interleaved stereo and returns the number of samples
// written. With loop set the stream reopens at its end; a pass that yields
// nothing ends the loop with ErrEmptyLoop.
func (s *stream) Read(dst []float32, loop bool) (int, error) {
	frames := len(dst) / 2
	written := 0
	empty := false

	for written < frames {
		if s.rs == nil {
			return written * 2, io.EOF
		}

		ch := s.rs.Channels()
		want := min(frames-written, len(s.raw)/ch)
		n, err := s.rs.ReadSamples(s.raw[:want*ch])
		got := n / ch
		toStereo(dst[written*2:(written+got)*2], s.raw[:got*ch], ch)
		written += got
		if got > 0 {
			empty = false
		}

		switch {
		case err == nil:
			continue
		case !errors.Is(err, io.EOF):
			return written * 2, fmt.Errorf("reading %q: %w", s.asset.ID, err)
		case !loop:
			return written * 2, io.EOF
		case empty:
			return written * 2, fmt.Errorf("%w: %q", ErrEmptyLoop, s.asset.ID)
		}

		s.closeSource()
		if err := s.open(); err != nil {
			return written * 2, err
		}
		empty = true
	}

	return written * 2, nil
}

func (s *stream) closeSource() error {
	var errs []error
	if s.rs != nil {
		errs = append(errs, s.rs.Close())
	}
	if s.rc != nil {
		errs = append(errs, s.rc.Close())
	}
	s.rs, s.src, s.rc = nil, nil, nil

	return errors.Join(errs...)
}

func (s *stream) Close() error { return s.closeSource() }

// toStereo maps interleaved frames of ch channels onto stereo. Mono is
// duplicated, extra channels are dropped.
func toStereo(dst, src []float32, ch int) {
	frames := len(dst) / 2
	for i := range frames {
		f := src[i*ch : (i+1)*ch]
		l := f[0]
		r := l
		if ch > 1 {
			r = f[1]
		}
		dst[i*2] = l
		dst[i*2+1] = r
	}
}
