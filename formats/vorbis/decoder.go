// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/ambience/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the slice of oggvorbis.Reader the source needs, split out for tests.
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type source struct {
	dec oggReader
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 * s.dec.Channels() }

// TotalFrames reports the granule length of the stream, or -1 when the
// underlying reader cannot seek to find it.
func (s *source) TotalFrames() int64 {
	if n := s.dec.Length(); n > 0 {
		return n
	}
	return -1
}

// ReadSamples decodes straight into dst. oggvorbis counts interleaved values,
// the same unit audio.Source uses, and never splits a frame.
func (s *source) ReadSamples(dst []float32) (int, error) {
	channels := s.dec.Channels()
	whole := len(dst) - len(dst)%channels
	if whole == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:whole])
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if dec.Channels() <= 0 {
		return nil, audio.ErrNoChannels
	}

	return &source{dec: dec}, nil
}
