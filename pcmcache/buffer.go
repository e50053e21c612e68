// SPDX-License-Identifier: EPL-2.0

package pcmcache

import (
	"sync/atomic"

	"github.com/ik5/ambience/audio"
)

// State is the load state of a Buffer.
type State int32

const (
	Unloaded State = iota
	Loading
	Loaded
	// Streaming clips are never materialised; a delegated device plays them.
	Streaming
	// Unreadable clips have no offline decoder; a delegated device plays them.
	Unreadable
	// Failed clips hit a decode error and stay empty.
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Streaming:
		return "streaming"
	case Unreadable:
		return "unreadable"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Buffer is the shared, read-only PCM of one clip.
//
// The sample data is written once before the state flips to Loaded, so any
// reader that observes Loaded through State may read the samples without
// further locking. That is what lets the render callback use a Buffer while
// the control loop keeps polling others.
type Buffer struct {
	id    string
	state atomic.Int32
	asset Asset
	pcm   *audio.Planar
	err   error
}

func newBuffer(id string) *Buffer {
	return &Buffer{id: id}
}

// NewStatic wraps PCM that was produced outside the cache. A nil or empty
// pcm yields a Failed buffer.
func NewStatic(id string, pcm *audio.Planar) *Buffer {
	b := newBuffer(id)
	if pcm == nil || pcm.Frames() == 0 {
		b.publish(nil, ErrEmptyClip)
		return b
	}
	b.asset = Asset{ID: id}
	b.publish(pcm, nil)
	return b
}

// ID is the clip identity the buffer was requested with.
func (b *Buffer) ID() string { return b.id }

func (b *Buffer) State() State { return State(b.state.Load()) }

// Loaded reports whether samples are available.
func (b *Buffer) Loaded() bool { return b.State() == Loaded }

// Usable reports whether the buffer is loaded and holds at least one frame.
func (b *Buffer) Usable() bool { return b.Loaded() && b.pcm.Frames() > 0 }

// Settled reports whether loading has reached a final state.
func (b *Buffer) Settled() bool {
	switch b.State() {
	case Loaded, Streaming, Unreadable, Failed:
		return true
	default:
		return false
	}
}

// Delegated reports whether playback must go through an output device
// instead of the software mixer.
func (b *Buffer) Delegated() bool {
	s := b.State()
	return s == Streaming || s == Unreadable
}

// Asset is the resolved asset, valid once the buffer left Unloaded.
func (b *Buffer) Asset() Asset { return b.asset }

// Err is the load error of a Failed buffer.
func (b *Buffer) Err() error {
	if b.State() != Failed {
		return nil
	}
	return b.err
}

func (b *Buffer) Channels() int {
	if !b.Loaded() {
		return 0
	}
	return b.pcm.Channels()
}

func (b *Buffer) SampleRate() int {
	if !b.Loaded() {
		return 0
	}
	return b.pcm.SampleRate
}

func (b *Buffer) Frames() int {
	if !b.Loaded() {
		return 0
	}
	return b.pcm.Frames()
}

// Duration in seconds at natural speed; zero until loaded.
func (b *Buffer) Duration() float64 {
	if !b.Loaded() {
		return 0
	}
	return b.pcm.Duration()
}

// Channel returns the samples of channel c, wrapping c when the clip has
// fewer channels than requested.
func (b *Buffer) Channel(c int) []float32 {
	if !b.Loaded() || b.pcm.Channels() == 0 {
		return nil
	}
	return b.pcm.Data[c%b.pcm.Channels()]
}

func (b *Buffer) publish(pcm *audio.Planar, err error) {
	if err != nil {
		b.err = err
		b.state.Store(int32(Failed))
		return
	}
	b.pcm = pcm
	b.state.Store(int32(Loaded))
}
