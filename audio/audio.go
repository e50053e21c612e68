// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path"
	"sort"
	"strings"
	"sync"
)

// Source is a streaming producer of interleaved float32 PCM.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// FrameCounter is implemented by sources that know their length up front.
// A negative count means unknown.
type FrameCounter interface {
	TotalFrames() int64
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

// Register binds d to a format key. Keys are case-insensitive.
func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// ForPath looks up a decoder by the extension of name ("forest.ogg" -> "ogg").
func (r *Registry) ForPath(name string) (Decoder, string, bool) {
	format := FormatOf(name)
	if format == "" {
		return nil, "", false
	}

	d, ok := r.Get(format)
	return d, format, ok
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// FormatOf returns the lower-cased extension of name without the dot.
func FormatOf(name string) string {
	ext := path.Ext(name)
	if len(ext) < 2 {
		return ""
	}

	return strings.ToLower(ext[1:])
}
