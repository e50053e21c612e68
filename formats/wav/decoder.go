// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/ambience/audio"
)

// pcmReader is the slice of gowav.Decoder the source needs, split out for tests.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	frames     int64
	sampleRate int
	channels   int
	scale      float32
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.intBuf.Data) }

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

	if n == 0 || n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Decoder reads RIFF/WAVE PCM at 8, 16, 24 or 32 bits per sample.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// the RIFF parser seeks between chunks
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, ErrOnlyPCMSupported
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedWavLayout
	}

	scale, err := audio.IntScale(int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBitDepth, err)
	}

	frames := int64(-1)
	if bytesPerFrame := int64(dec.BitDepth/8) * int64(format.NumChannels); bytesPerFrame > 0 {
		frames = dec.PCMLen() / bytesPerFrame
	}

	return &source{
		dec:        dec,
		frames:     frames,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      scale,
		intBuf: &goaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, 4096),
			SourceBitDepth: int(dec.BitDepth),
		},
	}, nil
}
