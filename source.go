// SPDX-License-Identifier: EPL-2.0

package ambience

import (
	"io"
	"time"

	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/zone"
)

// SourceOptions drives a Manager offline.
type SourceOptions struct {
	// Duration of audio to produce; zero or less streams forever.
	Duration time.Duration
	// TickInterval between control ticks, in rendered time. Defaults to
	// 20ms.
	TickInterval time.Duration
	// Listener returns the listener position at a point in rendered time.
	// Nil keeps the listener at the origin.
	Listener func(at time.Duration) zone.Vec3
}

type managerSource struct {
	m          *Manager
	listener   func(time.Duration) zone.Vec3
	interval   time.Duration
	tickFrames int
	total      int64
	done       int64
	untilTick  int
}

// Source exposes the Manager as an audio.Source that calls Tick on a fixed
// schedule of rendered time and RenderBuffer in between, so a scene can be
// rendered faster than real time.
func (m *Manager) Source(opts SourceOptions) audio.Source {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 20 * time.Millisecond
	}
	if opts.Listener == nil {
		opts.Listener = func(time.Duration) zone.Vec3 { return zone.Vec3{} }
	}

	total := int64(-1)
	if opts.Duration > 0 {
		total = int64(opts.Duration.Seconds() * float64(m.rate))
	}

	return &managerSource{
		m:          m,
		listener:   opts.Listener,
		interval:   opts.TickInterval,
		tickFrames: max(1, int(opts.TickInterval.Seconds()*float64(m.rate))),
		total:      total,
	}
}

func (s *managerSource) SampleRate() int { return s.m.rate }
func (s *managerSource) Channels() int   { return s.m.channels }
func (s *managerSource) BufSize() int    { return s.tickFrames * s.m.channels }
func (s *managerSource) Close() error    { return nil }

func (s *managerSource) ReadSamples(dst []float32) (int, error) {
	ch := s.m.channels
	frames := len(dst) / ch
	if s.total >= 0 {
		frames = int(min(int64(frames), s.total-s.done))
	}
	if frames <= 0 {
		if s.total >= 0 && s.done >= s.total {
			return 0, io.EOF
		}
		return 0, audio.ErrInvalidDstSize
	}

	written := 0
	for written < frames {
		if s.untilTick == 0 {
			at := time.Duration(s.done) * time.Second / time.Duration(s.m.rate)
			s.m.Tick(s.interval.Seconds(), s.listener(at))
			s.untilTick = s.tickFrames
		}

		n := min(frames-written, s.untilTick)
		s.m.RenderBuffer(dst[written*ch:], n, ch)
		written += n
		s.untilTick -= n
		s.done += int64(n)
	}

	return written * ch, nil
}
