// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/ambience/audio"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = channels * 2
)

// mp3Reader is the slice of gomp3.Decoder the source needs, split out for tests.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec  mp3Reader
	buf  []byte
	odd  bool // a lone byte of a split sample is parked in buf[0]
	done bool
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) TotalFrames() int64 {
	if n := s.dec.Length(); n > 0 {
		return n / bytesPerFrame
	}
	return -1
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		nb := make([]byte, need)
		if s.odd {
			nb[0] = s.buf[0]
		}
		s.buf = nb
	}
	s.buf = s.buf[:need]

	start := 0
	if s.odd {
		start = 1
	}

	n, err := s.dec.Read(s.buf[start:])
	n += start
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}

	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768.0
	}

	s.odd = n%2 == 1
	if s.odd {
		s.buf[0] = s.buf[n-1]
	}

	if err == io.EOF {
		s.done = true
		return samples, io.EOF
	}
	return samples, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec: dec,
		buf: make([]byte, 8192),
	}, nil
}
