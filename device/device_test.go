// SPDX-License-Identifier: EPL-2.0

package device

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/internal/audiotest"
	"github.com/ik5/ambience/pcmcache"
)

const testRate = 1000

type fakeVoice struct {
	name    string
	asset   pcmcache.Asset
	stream  bool
	oneShot bool
	value   float32
	gain    float32

	fills    int
	finished bool
}

func (f *fakeVoice) Name() string                   { return f.name }
func (f *fakeVoice) Stream() (pcmcache.Asset, bool) { return f.asset, f.stream }
func (f *fakeVoice) OneShot() bool                  { return f.oneShot }
func (f *fakeVoice) PlaybackSpeed() float64         { return 1 }
func (f *fakeVoice) Finish()                        { f.finished = true }

func (f *fakeVoice) Fill(dst []float32, frames, channels, _ int) {
	f.fills++
	n := frames * channels
	for i := range dst[:n] {
		if f.stream {
			dst[i] *= f.gain
			continue
		}
		dst[i] = f.value
	}
}

func wavAsset(id string, seconds float64, value float32) pcmcache.Asset {
	data := audiotest.ConstantWAV(testRate, 1, seconds, value)
	return pcmcache.Asset{
		ID:        id,
		Format:    "wav",
		Streaming: true,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type emptyDecoder struct{}

func (emptyDecoder) Decode(io.Reader) (audio.Source, error) {
	return audiotest.NewSilentSource(testRate, 1, 0), nil
}

func newTestDevice() *Device {
	return New(Options{SampleRate: testRate})
}

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestDevice_PCMVoiceCentered(t *testing.T) {
	t.Parallel()

	d := newTestDevice()
	v := &fakeVoice{name: "wind", value: 0.25}
	d.Attach(v)

	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}

	out := make([][2]float64, 64)
	n, ok := d.Stream(out)
	if n != len(out) || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	for i, s := range out {
		if !near(s[0], 0.25, 1e-6) || !near(s[1], 0.25, 1e-6) {
			t.Fatalf("sample %d = %v, want 0.25 on both sides", i, s)
		}
	}
	if v.fills == 0 {
		t.Fatal("voice was never filled")
	}
}

func TestDevice_Place(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		angle, dist float64
		left, right float64
	}{
		{name: "ahead", angle: 0, dist: 0, left: 0.25, right: 0.25},
		{name: "hard right", angle: 90, dist: 0, left: 0, right: 0.5},
		{name: "hard left", angle: -90, dist: 0, left: 0.5, right: 0},
		{name: "far ahead", angle: 0, dist: 20, left: 0.125, right: 0.125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newTestDevice()
			v := &fakeVoice{name: "birds", value: 0.25}
			d.Attach(v)
			d.Place(v, tt.angle, tt.dist)

			out := make([][2]float64, 8)
			d.Stream(out)
			for _, s := range out {
				if !near(s[0], tt.left, 1e-6) || !near(s[1], tt.right, 1e-6) {
					t.Fatalf("got %v, want [%v %v]", s, tt.left, tt.right)
				}
			}
		})
	}
}

func TestDevice_PlaceUnknownVoice(t *testing.T) {
	t.Parallel()

	d := newTestDevice()
	d.Place(&fakeVoice{}, 45, 3)
	if d.Len() != 0 {
		t.Fatalf("Len = %d, want 0", d.Len())
	}
}

func TestDevice_Detach(t *testing.T) {
	t.Parallel()

	d := newTestDevice()
	v := &fakeVoice{name: "rain", value: 0.5}
	d.Attach(v)
	d.Attach(v)
	if d.Len() != 1 {
		t.Fatalf("double Attach gave Len %d", d.Len())
	}

	d.Detach(v)
	d.Detach(v)
	if d.Len() != 0 {
		t.Fatalf("Len = %d after Detach", d.Len())
	}

	fills := v.fills
	out := make([][2]float64, 32)
	n, ok := d.Stream(out)
	if n != len(out) || !ok {
		t.Fatalf("device drained: %d, %v", n, ok)
	}
	for _, s := range out {
		if s != [2]float64{} {
			t.Fatalf("detached voice still audible: %v", s)
		}
	}
	if v.fills != fills {
		t.Fatal("detached voice was filled")
	}
}

func TestDevice_Paused(t *testing.T) {
	t.Parallel()

	d := newTestDevice()
	d.Attach(&fakeVoice{name: "hum", value: 0.5})
	d.SetPaused(true)
	if !d.Paused() {
		t.Fatal("Paused = false")
	}

	out := make([][2]float64, 16)
	d.Stream(out)
	for _, s := range out {
		if s != [2]float64{} {
			t.Fatalf("paused device produced %v", s)
		}
	}

	d.SetPaused(false)
	d.Stream(out)
	if !near(out[0][0], 0.5, 1e-6) {
		t.Fatalf("resumed device produced %v", out[0])
	}
}

func TestDevice_StreamingLoops(t *testing.T) {
	t.Parallel()

	d := newTestDevice()
	v := &fakeVoice{
		name:   "river",
		asset:  wavAsset("river.wav", 0.01, 0.5),
		stream: true,
		gain:   0.5,
	}
	d.Attach(v)

	// many times the asset length
	out := make([][2]float64, 200)
	d.Stream(out)
	for i, s := range out {
		if !near(s[0], 0.25, 1e-3) || !near(s[1], 0.25, 1e-3) {
			t.Fatalf("sample %d = %v, want 0.25", i, s)
		}
	}
	if v.finished {
		t.Fatal("looping voice reported Finish")
	}
}

func TestDevice_StreamingOneShot(t *testing.T) {
	t.Parallel()

	d := newTestDevice()
	v := &fakeVoice{
		name:    "thunder",
		asset:   wavAsset("thunder.wav", 0.02, 0.5),
		stream:  true,
		oneShot: true,
		gain:    1,
	}
	d.Attach(v)

	out := make([][2]float64, 200)
	d.Stream(out)

	if !v.finished {
		t.Fatal("one-shot stream did not Finish")
	}
	if !near(out[0][0], 0.5, 1e-3) {
		t.Fatalf("first sample = %v, want 0.5", out[0])
	}
	if out[len(out)-1] != [2]float64{} {
		t.Fatalf("tail = %v, want silence", out[len(out)-1])
	}
}

func TestDevice_StreamOpenFailure(t *testing.T) {
	t.Parallel()

	d := newTestDevice()
	asset := wavAsset("odd.xyz", 0.01, 0.5)
	asset.Format = "xyz"
	v := &fakeVoice{name: "odd", asset: asset, stream: true, oneShot: true, gain: 1}
	d.Attach(v)

	if !v.finished {
		t.Fatal("one-shot with no decoder was not finished")
	}

	out := make([][2]float64, 16)
	d.Stream(out)
	for _, s := range out {
		if s != [2]float64{} {
			t.Fatalf("broken stream produced %v", s)
		}
	}
}

func TestOpenStream_Errors(t *testing.T) {
	t.Parallel()

	reg := pcmcache.DefaultRegistry()

	if _, err := openStream(pcmcache.Asset{ID: "x", Format: "wav"}, reg, testRate); !errors.Is(err, ErrNoOpener) {
		t.Errorf("no opener: err = %v", err)
	}

	asset := wavAsset("x.flac", 0.01, 0)
	asset.Format = "flac"
	if _, err := openStream(asset, reg, testRate); !errors.Is(err, ErrNoDecoder) {
		t.Errorf("no decoder: err = %v", err)
	}

	reg.Register("empty", emptyDecoder{})
	empty := wavAsset("empty.empty", 0.01, 0)
	empty.Format = "empty"
	s, err := openStream(empty, reg, testRate)
	if err != nil {
		t.Fatalf("openStream: %v", err)
	}
	defer s.Close()

	buf := make([]float32, 32)
	if _, err := s.Read(buf, true); !errors.Is(err, ErrEmptyLoop) {
		t.Errorf("empty loop: err = %v", err)
	}
}

func TestDevice_Mix(t *testing.T) {
	t.Parallel()

	d := newTestDevice()
	d.Attach(&fakeVoice{name: "hum", value: 0.25})

	stereo := make([]float32, 2*4096)
	for i := range stereo {
		stereo[i] = 0.5
	}
	if err := d.Mix(stereo, 2); err != nil {
		t.Fatalf("Mix: %v", err)
	}
	for i, s := range stereo {
		if !near(float64(s), 0.75, 1e-6) {
			t.Fatalf("stereo[%d] = %v, want 0.75", i, s)
		}
	}

	mono := make([]float32, 10)
	if err := d.Mix(mono, 1); err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if !near(float64(mono[0]), 0.25, 1e-6) {
		t.Fatalf("mono = %v, want 0.25", mono[0])
	}

	if err := d.Mix(make([]float32, 3), 2); !errors.Is(err, ErrBadChannel) {
		t.Fatalf("odd buffer: err = %v", err)
	}
}

func TestAttenuation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		distance, rolloff, want float64
	}{
		{0, 0.05, 1},
		{-3, 0.05, 1},
		{10, 0, 1},
		{20, 0.05, 0.5},
		{10, 1, 1.0 / 11},
	}
	for _, tt := range tests {
		if got := Attenuation(tt.distance, tt.rolloff); !near(got, tt.want, 1e-12) {
			t.Errorf("Attenuation(%v, %v) = %v, want %v", tt.distance, tt.rolloff, got, tt.want)
		}
	}
}

func TestPan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		angle, want float64
	}{
		{0, 0},
		{90, 1},
		{-90, -1},
		{180, 0},
		{30, 0.5},
	}
	for _, tt := range tests {
		if got := Pan(tt.angle); !near(got, tt.want, 1e-9) {
			t.Errorf("Pan(%v) = %v, want %v", tt.angle, got, tt.want)
		}
	}
}
