// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"io"
	"testing"
)

// fakeOgg hands back interleaved values a few at a time.
type fakeOgg struct {
	channels int
	data     []float32
	off      int
	maxRead  int
}

func (f *fakeOgg) SampleRate() int { return 48000 }
func (f *fakeOgg) Channels() int   { return f.channels }
func (f *fakeOgg) Length() int64   { return int64(len(f.data) / f.channels) }

func (f *fakeOgg) Read(p []float32) (int, error) {
	if f.off >= len(f.data) {
		return 0, io.EOF
	}
	n := min(len(p), f.maxRead, len(f.data)-f.off)
	copy(p, f.data[f.off:f.off+n])
	f.off += n
	return n, nil
}

func TestSource_ReadsWholeFrames(t *testing.T) {
	t.Parallel()

	src := &source{dec: &fakeOgg{channels: 2, data: []float32{1, 2, 3, 4, 5, 6}, maxRead: 4}}

	buf := make([]float32, 5) // odd length: only 4 values are requested
	n, err := src.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("ReadSamples() n = %d, want 4", n)
	}

	n, _ = src.ReadSamples(buf)
	if n != 2 || buf[0] != 5 || buf[1] != 6 {
		t.Errorf("second read = %v (n=%d), want [5 6]", buf[:n], n)
	}

	if n, err = src.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("third read = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_TotalFrames(t *testing.T) {
	t.Parallel()

	src := &source{dec: &fakeOgg{channels: 2, data: make([]float32, 20)}}
	if got := src.TotalFrames(); got != 10 {
		t.Errorf("TotalFrames() = %d, want 10", got)
	}
}

func TestDecoder_RejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("OggS but not really"))); err == nil {
		t.Error("Decode() error = nil, want error")
	}
}
