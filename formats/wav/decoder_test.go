// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/ambience/audio"
)

func encode(t *testing.T, rate, channels int, samples []int16) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := WritePCM16(&buf, rate, channels, samples); err != nil {
		t.Fatalf("WritePCM16() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecoder_Stereo(t *testing.T) {
	t.Parallel()

	samples := []int16{16384, -16384, 8192, -8192, 0, 0}
	src, err := Decoder{}.Decode(bytes.NewReader(encode(t, 44100, 2, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if src.SampleRate() != 44100 || src.Channels() != 2 {
		t.Fatalf("format = %d Hz / %d ch, want 44100 / 2", src.SampleRate(), src.Channels())
	}

	pcm, err := audio.ReadPlanar(src, 0)
	if err != nil {
		t.Fatalf("ReadPlanar() error = %v", err)
	}
	if pcm.Frames() != 3 {
		t.Fatalf("Frames() = %d, want 3", pcm.Frames())
	}

	want := [][]float32{{0.5, 0.25, 0}, {-0.5, -0.25, 0}}
	for c := range want {
		for i := range want[c] {
			if math.Abs(float64(pcm.Data[c][i]-want[c][i])) > 1e-4 {
				t.Errorf("channel %d frame %d = %v, want %v", c, i, pcm.Data[c][i], want[c][i])
			}
		}
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := encode(t, 8000, 1, []int16{1, 2, 3, 4})
	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf := make([]float32, 16)
	n, err := src.ReadSamples(buf)
	if n != 4 {
		t.Errorf("ReadSamples() n = %d, want 4", n)
	}
	if err != io.EOF {
		t.Errorf("ReadSamples() err = %v, want io.EOF on short read", err)
	}
}

func TestDecoder_NotWav(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("definitely not a riff file, just text")))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}

func TestWritePCM16_RejectsPartialFrames(t *testing.T) {
	t.Parallel()

	err := WritePCM16(io.Discard, 8000, 2, []int16{1, 2, 3})
	if err == nil {
		t.Error("WritePCM16() error = nil, want error for 3 samples in stereo")
	}
}

func TestWriteWAV16_Header(t *testing.T) {
	t.Parallel()

	data := encode(t, 16000, 1, make([]int16, 10))
	if len(data) != 44+20 {
		t.Fatalf("len = %d, want 64", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Errorf("unexpected header %q", data[:44])
	}
}
