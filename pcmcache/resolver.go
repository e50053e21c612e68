// SPDX-License-Identifier: EPL-2.0

package pcmcache

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/ik5/ambience/audio"
	"github.com/ik5/ambience/formats/aiff"
	"github.com/ik5/ambience/formats/mp3"
	"github.com/ik5/ambience/formats/vorbis"
	"github.com/ik5/ambience/formats/wav"
)

// Asset describes where a clip's bytes live and how they are meant to play.
type Asset struct {
	ID     string
	Format string
	// Streaming assets are handed to a delegated output device as-is.
	Streaming bool
	Open      func() (io.ReadCloser, error)
}

// Resolver maps clip identities to assets.
type Resolver interface {
	Resolve(id string) (Asset, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id string) (Asset, error)

func (f ResolverFunc) Resolve(id string) (Asset, error) { return f(id) }

// StreamSuffix marks a clip id for streaming playback ("river.ogg#stream").
const StreamSuffix = "#stream"

// FSResolver resolves clip ids as paths inside an fs.FS. The format is the
// file extension. Ids ending in StreamSuffix, or listed in Stream, are
// streamed rather than decoded into memory.
type FSResolver struct {
	FS     fs.FS
	Stream map[string]bool
}

func (r FSResolver) Resolve(id string) (Asset, error) {
	if r.FS == nil {
		return Asset{}, ErrNoResolver
	}

	name, streaming := strings.CutSuffix(id, StreamSuffix)
	streaming = streaming || r.Stream[id] || r.Stream[name]

	if _, err := fs.Stat(r.FS, name); err != nil {
		return Asset{}, fmt.Errorf("resolving %q: %w", id, err)
	}

	return Asset{
		ID:        id,
		Format:    audio.FormatOf(name),
		Streaming: streaming,
		Open: func() (io.ReadCloser, error) {
			return r.FS.Open(name)
		},
	}, nil
}

// DefaultRegistry knows every format under formats/.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}
