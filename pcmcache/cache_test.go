// SPDX-License-Identifier: EPL-2.0

package pcmcache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/internal/audiotest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"birds.wav":  {Data: audiotest.ConstantWAV(8000, 2, 0.5, 0.25)},
		"wind.wav":   {Data: audiotest.ConstantWAV(16000, 1, 1.0, -0.5)},
		"broken.wav": {Data: []byte("RIFF garbage that is not a wave file")},
		"river.ogg":  {Data: []byte("streamed, never decoded here")},
		"voice.flac": {Data: []byte("no decoder registered for flac")},
	}
}

func newTestCache(opts Options) *Cache {
	if opts.Resolver == nil {
		opts.Resolver = FSResolver{FS: testFS()}
	}
	opts.Logger = quietLogger()
	return New(opts)
}

// waitSettled polls like a control loop would until b settles.
func waitSettled(t *testing.T, c *Cache, b *Buffer) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !b.Settled() {
		if time.Now().After(deadline) {
			t.Fatalf("clip %q never settled (state %v)", b.ID(), b.State())
		}
		c.Poll()
		time.Sleep(time.Millisecond)
	}
}

func TestCache_GetBufferIsIdempotent(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{})

	a := c.GetBuffer("birds.wav")
	b := c.GetBuffer("birds.wav")
	if a != b {
		t.Fatal("GetBuffer() returned different buffers for the same clip")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	waitSettled(t, c, a)
	if !a.Loaded() {
		t.Fatalf("state = %v, want loaded (err %v)", a.State(), a.Err())
	}
	if c.GetBuffer("birds.wav") != a {
		t.Error("GetBuffer() after load returned a new buffer")
	}
	if !c.IsLoaded("birds.wav") {
		t.Error("IsLoaded() = false after load")
	}
}

func TestCache_LoadedBufferShape(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{})
	b := c.GetBuffer("birds.wav")
	waitSettled(t, c, b)

	if b.Channels() != 2 || b.SampleRate() != 8000 || b.Frames() != 4000 {
		t.Fatalf("shape = %d ch, %d Hz, %d frames; want 2, 8000, 4000", b.Channels(), b.SampleRate(), b.Frames())
	}
	if math.Abs(b.Duration()-0.5) > 1e-9 {
		t.Errorf("Duration() = %v, want 0.5", b.Duration())
	}
	if v := b.Channel(1)[100]; math.Abs(float64(v)-0.25) > 1e-3 {
		t.Errorf("sample = %v, want ~0.25", v)
	}
	// channel 3 wraps onto channel 1
	if &b.Channel(3)[0] != &b.Channel(1)[0] {
		t.Error("Channel(3) does not wrap onto channel 1")
	}
}

func TestCache_UnloadedBufferIsEmpty(t *testing.T) {
	t.Parallel()

	b := newBuffer("x")
	if b.Usable() || b.Frames() != 0 || b.Duration() != 0 || b.Channel(0) != nil {
		t.Error("unloaded buffer reports data")
	}
}

func TestCache_DecodeFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{})
	b := c.GetBuffer("broken.wav")
	waitSettled(t, c, b)

	if b.State() != Failed {
		t.Fatalf("state = %v, want failed", b.State())
	}
	if b.Err() == nil || b.Frames() != 0 || b.Usable() {
		t.Error("failed buffer should be empty and carry an error")
	}
}

func TestCache_MissingAssetFails(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{})
	b := c.GetBuffer("nope.wav")

	if b.State() != Failed {
		t.Errorf("state = %v, want failed", b.State())
	}
}

func TestCache_StreamingAndUnreadableDelegate(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{})

	tests := []struct {
		id   string
		want State
	}{
		{"river.ogg" + StreamSuffix, Streaming},
		{"voice.flac", Unreadable},
	}

	for _, tt := range tests {
		b := c.GetBuffer(tt.id)
		if b.State() != tt.want {
			t.Errorf("%s: state = %v, want %v", tt.id, b.State(), tt.want)
		}
		if !b.Delegated() || !b.Settled() || b.Loaded() {
			t.Errorf("%s: should be settled, delegated and not loaded", tt.id)
		}
	}

	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0: delegated clips are never decoded", c.Pending())
	}
}

func TestCache_EmptyIDIsNil(t *testing.T) {
	t.Parallel()

	if b := newTestCache(Options{}).GetBuffer(""); b != nil {
		t.Errorf("GetBuffer(\"\") = %v, want nil", b)
	}
}

func TestCache_NoResolver(t *testing.T) {
	t.Parallel()

	c := New(Options{Logger: quietLogger()})
	b := c.GetBuffer("birds.wav")
	if b.State() != Failed || !errors.Is(b.Err(), ErrNoResolver) {
		t.Errorf("state = %v err = %v, want failed with ErrNoResolver", b.State(), b.Err())
	}
}

func TestCache_Preload(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{Workers: 2})

	err := c.Preload(context.Background(), "birds.wav", "wind.wav", "birds.wav")
	if err != nil {
		t.Fatalf("Preload() error = %v", err)
	}

	for _, id := range []string{"birds.wav", "wind.wav"} {
		if !c.IsLoaded(id) {
			t.Errorf("%s not loaded after Preload", id)
		}
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d after Preload, want 0", c.Pending())
	}
}

func TestCache_PreloadReportsFailure(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{})

	err := c.Preload(context.Background(), "wind.wav", "broken.wav")
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("Preload() error = %v, want ErrLoadFailed", err)
	}
	if !c.IsLoaded("wind.wav") {
		t.Error("a failing clip stopped the others from loading")
	}
}

func TestCache_TargetRateResamples(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{TargetRate: 8000})
	b := c.GetBuffer("wind.wav")
	waitSettled(t, c, b)

	if b.SampleRate() != 8000 {
		t.Fatalf("SampleRate() = %d, want 8000", b.SampleRate())
	}
	if math.Abs(b.Duration()-1.0) > 0.01 {
		t.Errorf("Duration() = %v, want ~1.0", b.Duration())
	}
}

func TestCache_ConcurrentRequestsDecodeOnce(t *testing.T) {
	t.Parallel()

	var opens atomic.Int32
	release := make(chan struct{})
	fsys := testFS()

	resolver := ResolverFunc(func(id string) (Asset, error) {
		return Asset{
			ID:     id,
			Format: "wav",
			Open: func() (io.ReadCloser, error) {
				opens.Add(1)
				<-release
				return fsys.Open("birds.wav")
			},
		}, nil
	})

	c := newTestCache(Options{Resolver: resolver})
	b := c.GetBuffer("slow")

	if b.State() != Loading {
		t.Fatalf("state = %v, want loading while decode is blocked", b.State())
	}
	if c.Poll() != 0 {
		t.Error("Poll() published a decode that has not finished")
	}
	for range 10 {
		c.GetBuffer("slow")
	}

	close(release)
	waitSettled(t, c, b)

	if got := opens.Load(); got != 1 {
		t.Errorf("asset opened %d times, want 1", got)
	}
}

func TestCache_DecoderPanicIsContained(t *testing.T) {
	t.Parallel()

	resolver := ResolverFunc(func(id string) (Asset, error) {
		return Asset{ID: id, Format: "wav", Open: func() (io.ReadCloser, error) {
			panic("bad asset")
		}}, nil
	})

	c := newTestCache(Options{Resolver: resolver})
	b := c.GetBuffer("boom")
	waitSettled(t, c, b)

	if !errors.Is(b.Err(), ErrDecoderPanic) {
		t.Errorf("Err() = %v, want ErrDecoderPanic", b.Err())
	}
}

func TestFSResolver_StreamMap(t *testing.T) {
	t.Parallel()

	r := FSResolver{FS: testFS(), Stream: map[string]bool{"wind.wav": true}}

	a, err := r.Resolve("wind.wav")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !a.Streaming || a.Format != "wav" {
		t.Errorf("asset = %+v, want streaming wav", a)
	}

	rc, err := a.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	head := make([]byte, 4)
	if _, err := io.ReadFull(rc, head); err != nil || !strings.HasPrefix(string(head), "RIFF") {
		t.Errorf("opened asset starts with %q (err %v)", head, err)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	if Streaming.String() != "streaming" || State(99).String() != "unknown" {
		t.Error("unexpected State strings")
	}
}

func TestCache_Put(t *testing.T) {
	t.Parallel()

	c := newTestCache(Options{})
	pcm := &audio.Planar{Data: [][]float32{{0.1, 0.2, 0.3}}, SampleRate: 8000}

	b := c.Put("tone", pcm)
	if !b.Usable() || b.Frames() != 3 || b.SampleRate() != 8000 {
		t.Fatalf("Put buffer: state %v, %d frames at %d Hz", b.State(), b.Frames(), b.SampleRate())
	}
	if c.GetBuffer("tone") != b {
		t.Fatal("GetBuffer did not return the installed buffer")
	}
	if c.Pending() != 0 {
		t.Fatalf("Put started a decode")
	}

	other := &audio.Planar{Data: [][]float32{{1}}, SampleRate: 8000}
	if got := c.Put("tone", other); got != b || got.Frames() != 3 {
		t.Fatal("Put replaced a known clip")
	}
	if c.Put("", pcm) != nil {
		t.Fatal("Put accepted an empty id")
	}
}

func TestNewStatic_Empty(t *testing.T) {
	t.Parallel()

	for _, pcm := range []*audio.Planar{nil, {SampleRate: 8000}} {
		b := NewStatic("empty", pcm)
		if b.State() != Failed || !errors.Is(b.Err(), ErrEmptyClip) {
			t.Errorf("NewStatic(%v): state %v err %v", pcm, b.State(), b.Err())
		}
	}
}
