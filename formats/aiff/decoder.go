// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/ambience/audio"
)

// aiffReader is the slice of aiff.Decoder the source needs, split out for tests.
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source
type source struct {
	dec        aiffReader
	sampleRate int
	channels   int
	frames     int64
	scale      float32
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int    { return s.sampleRate }
func (s *source) Channels() int      { return s.channels }
func (s *source) Close() error       { return nil }
func (s *source) BufSize() int       { return cap(s.intBuf.Data) }
func (s *source) TotalFrames() int64 { return s.frames }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) * s.scale
	}

	// fewer samples than requested means the SSND chunk is exhausted
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	scale, err := audio.IntScale(int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBitDepth, err)
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		frames:     int64(dec.NumSampleFrames),
		scale:      scale,
		intBuf: &goaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, 4096),
			SourceBitDepth: int(dec.BitDepth),
		},
	}, nil
}
