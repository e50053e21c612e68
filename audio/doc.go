// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decode-side primitives the mixing engine builds on.
//
// # Source Interface
//
// Every decoder yields a Source, a pull-based stream of interleaved float32
// samples in [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns io.EOF once the stream is finished, possibly together
// with the last samples.
//
// # Decoding into memory
//
// The PCM cache needs random access, so clips are drained once into Planar
// form, one slice per channel:
//
//	pcm, err := audio.ReadPlanar(src, 0)
//	left := pcm.Data[0]
//
// Sources that know their length (audio.FrameCounter) let ReadPlanar size its
// slices up front.
//
// # Resampling and channel folding
//
// Resampler converts sample rate with Catmull-Rom interpolation and can apply
// a playback speed on top, which delegated streaming voices use to follow a
// track's pitch. MonoMixer averages channels; ResampleToMono16 chains both and
// collects 16-bit PCM for the offline renderer.
//
// # Format registry
//
// The Registry maps format keys (file extensions) to decoders:
//
//	reg := audio.NewRegistry()
//	reg.Register("ogg", vorbis.Decoder{})
//	dec, format, ok := reg.ForPath("rain.ogg")
package audio
