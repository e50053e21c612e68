// SPDX-License-Identifier: EPL-2.0

package device

import (
	"log/slog"
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/ik5/ambience"
	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/pcmcache"
)

// DefaultRolloff is how fast gain drops with distance.
const DefaultRolloff = 0.05

// maxChunk bounds the frames a voice renders per pass.
const maxChunk = 2048

type Options struct {
	SampleRate int
	// Registry decodes streamed assets. Defaults to pcmcache.DefaultRegistry.
	Registry *audio.Registry
	// Rolloff scales distance attenuation: gain = 1/(1+distance*Rolloff).
	// Negative disables attenuation; zero means DefaultRolloff.
	Rolloff float64
	Logger  *slog.Logger
}

// Device mixes delegated voices. It implements ambience.Delegate.
type Device struct {
	mu      sync.Mutex
	rate    int
	reg     *audio.Registry
	rolloff float64
	log     *slog.Logger

	mixer  *beep.Mixer
	ctrl   *beep.Ctrl
	voices map[ambience.Voice]*voiceStreamer

	scratch [][2]float64
}

var _ ambience.Delegate = (*Device)(nil)

func New(opts Options) *Device {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 48000
	}
	if opts.Registry == nil {
		opts.Registry = pcmcache.DefaultRegistry()
	}
	switch {
	case opts.Rolloff == 0:
		opts.Rolloff = DefaultRolloff
	case opts.Rolloff < 0:
		opts.Rolloff = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	mixer := &beep.Mixer{}
	return &Device{
		rate:    opts.SampleRate,
		reg:     opts.Registry,
		rolloff: opts.Rolloff,
		log:     opts.Logger.With("component", "device"),
		mixer:   mixer,
		ctrl:    &beep.Ctrl{Streamer: mixer},
		voices:  make(map[ambience.Voice]*voiceStreamer),
		scratch: make([][2]float64, maxChunk),
	}
}

// Format is the stream format Device produces.
func (d *Device) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(d.rate),
		NumChannels: 2,
		Precision:   2,
	}
}

func (d *Device) SampleRate() int { return d.rate }

// Len is the number of attached voices.
func (d *Device) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.voices)
}

func (d *Device) Attach(v ambience.Voice) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.voices[v]; ok {
		return
	}

	vs := &voiceStreamer{
		v:    v,
		rate: d.rate,
		buf:  make([]float32, maxChunk*2),
	}
	if asset, ok := v.Stream(); ok {
		s, err := openStream(asset, d.reg, d.rate)
		if err != nil {
			d.log.Warn("stream failed to open, voice stays silent", "voice", v.Name(), "asset", asset.ID, "err", err)
			if v.OneShot() {
				v.Finish()
			}
		}
		vs.stream = s
		vs.streaming = true
	}

	vs.volume = &effects.Volume{Streamer: vs, Base: 2}
	vs.pan = &effects.Pan{Streamer: vs.volume}
	d.voices[v] = vs
	d.mixer.Add(vs.pan)

	d.log.Debug("voice attached", "voice", v.Name(), "streaming", vs.streaming)
}

func (d *Device) Detach(v ambience.Voice) {
	d.mu.Lock()
	defer d.mu.Unlock()

	vs, ok := d.voices[v]
	if !ok {
		return
	}
	delete(d.voices, v)
	vs.done = true
	if vs.stream != nil {
		if err := vs.stream.Close(); err != nil {
			d.log.Debug("closing stream", "voice", v.Name(), "err", err)
		}
		vs.stream = nil
	}

	d.log.Debug("voice detached", "voice", v.Name())
}

// Place pans v by sin(angle) and attenuates it by distance.
func (d *Device) Place(v ambience.Voice, angle, distance float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	vs, ok := d.voices[v]
	if !ok {
		return
	}

	vs.pan.Pan = Pan(angle)
	gain := Attenuation(distance, d.rolloff)
	vs.volume.Silent = gain <= 0
	if gain > 0 {
		vs.volume.Volume = math.Log2(gain)
	}
}

// SetPaused silences the whole device without dropping voices.
func (d *Device) SetPaused(paused bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ctrl.Paused = paused
}

func (d *Device) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ctrl.Paused
}

// Stream implements beep.Streamer. It never drains.
func (d *Device) Stream(samples [][2]float64) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ctrl.Stream(samples)
}

func (d *Device) Err() error { return nil }

// Mix adds the device output to dst, interleaved with the given channel
// count. Mono gets the average of both sides; channels past the second are
// left alone.
func (d *Device) Mix(dst []float32, channels int) error {
	if channels <= 0 || len(dst)%channels != 0 {
		return ErrBadChannel
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	frames := len(dst) / channels
	for off := 0; off < frames; {
		n := min(frames-off, len(d.scratch))
		s := d.scratch[:n]
		clear(s)
		d.ctrl.Stream(s)

		out := dst[off*channels : (off+n)*channels]
		for i, p := range s {
			f := out[i*channels : (i+1)*channels]
			if channels == 1 {
				f[0] += float32((p[0] + p[1]) / 2)
				continue
			}
			f[0] += float32(p[0])
			f[1] += float32(p[1])
		}
		off += n
	}

	return nil
}

// Pan maps an angle in degrees to a beep pan position in [-1, 1].
func Pan(angle float64) float64 {
	return math.Sin(angle * math.Pi / 180)
}

// Attenuation is the gain of a voice at distance.
func Attenuation(distance, rolloff float64) float64 {
	if distance <= 0 || rolloff <= 0 {
		return 1
	}
	return 1 / (1 + distance*rolloff)
}
