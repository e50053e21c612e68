// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"io"
	"math"
	"testing"

	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/internal/audiotest"
)

func drain(t *testing.T, src audio.Source, bufSize int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, bufSize)
	for range 1_000_000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("source never reached EOF")
	return nil
}

func TestResampler_LengthFollowsRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
	}{
		{"down 44100 to 16000", 44100, 16000},
		{"up 22050 to 48000", 22050, 48000},
		{"same rate", 48000, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.from, 1, tt.from, 220)
			got := drain(t, audio.NewResampler(src, tt.to), 1000)

			if diff := math.Abs(float64(len(got) - tt.to)); diff > 4 {
				t.Errorf("got %d samples for one second, want ~%d", len(got), tt.to)
			}
		})
	}
}

func TestResampler_PreservesConstant(t *testing.T) {
	t.Parallel()

	src := audiotest.NewChannelSource(8000, 800, 0.5, -0.25)
	got := drain(t, audio.NewResampler(src, 12000), 600)

	// skip the low-pass warm-up region; upsampling has no filter anyway
	for i := 0; i+1 < len(got); i += 2 {
		if math.Abs(float64(got[i]-0.5)) > 1e-5 || math.Abs(float64(got[i+1]+0.25)) > 1e-5 {
			t.Fatalf("frame %d = (%v, %v), want (0.5, -0.25)", i/2, got[i], got[i+1])
		}
	}
}

func TestResampler_SpeedShortensOutput(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 1, 8000)
	r := audio.NewResampler(src, 8000)
	r.SetSpeed(2)

	got := drain(t, r, 256)
	if diff := math.Abs(float64(len(got) - 4000)); diff > 4 {
		t.Errorf("double speed produced %d samples, want ~4000", len(got))
	}
}

func TestResampler_RejectsPartialFrames(t *testing.T) {
	t.Parallel()

	r := audio.NewResampler(audiotest.NewSilentSource(8000, 2, 100), 8000)
	if _, err := r.ReadSamples(make([]float32, 3)); err != audio.ErrInvalidDstSize {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	r := audio.NewResampler(audiotest.NewSilentSource(8000, 1, 0), 16000)
	if n, err := r.ReadSamples(make([]float32, 16)); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestMonoMixer_Averages(t *testing.T) {
	t.Parallel()

	mono := audio.NewMonoMixer(audiotest.NewChannelSource(8000, 10, 1, 0, -0.5, 0.5))
	if mono.Channels() != 1 {
		t.Fatalf("Channels() = %d, want 1", mono.Channels())
	}

	buf := make([]float32, 10)
	n, _ := mono.ReadSamples(buf)
	if n != 10 {
		t.Fatalf("ReadSamples() n = %d, want 10", n)
	}
	for i, v := range buf {
		if v != 0.25 {
			t.Errorf("sample %d = %v, want 0.25", i, v)
		}
	}
}

func TestResampleToMono16(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(16000, 2, 16000, 0.5)
	pcm, rate, err := audio.ResampleToMono16(src, 8000, 512)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if rate != 8000 {
		t.Errorf("rate = %d, want 8000", rate)
	}
	if diff := math.Abs(float64(len(pcm) - 8000)); diff > 4 {
		t.Errorf("len = %d, want ~8000", len(pcm))
	}
	if v := pcm[len(pcm)/2]; math.Abs(float64(v)-16383) > 2 {
		t.Errorf("mid sample = %d, want ~16383", v)
	}
}

func TestClose_ReachesSource(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(44100, 2, 100)
	chain := audio.NewMonoMixer(audio.NewResampler(src, 16000))

	if err := chain.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.Closed() {
		t.Fatal("source not closed")
	}
}
