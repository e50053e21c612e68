// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type fakeAiff struct {
	data []int
	off  int
}

func (f *fakeAiff) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, f.data[f.off:])
	f.off += n
	return n, nil
}

func TestSource_ScalesAndSignalsEOF(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:        &fakeAiff{data: []int{16384, -32768, 0}},
		sampleRate: 22050,
		channels:   1,
		scale:      1.0 / 32768.0,
		intBuf:     &goaudio.IntBuffer{Data: make([]int, 2)},
	}

	buf := make([]float32, 2)
	n, err := src.ReadSamples(buf)
	if n != 2 || err != nil {
		t.Fatalf("first read = (%d, %v), want (2, nil)", n, err)
	}
	if buf[0] != 0.5 || buf[1] != -1 {
		t.Errorf("first read values = %v, want [0.5 -1]", buf)
	}

	n, err = src.ReadSamples(buf)
	if n != 1 || err != io.EOF {
		t.Errorf("second read = (%d, %v), want (1, EOF)", n, err)
	}
}

func TestDecoder_NotAiff(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("RIFF....WAVEfmt ")))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
	}
}
