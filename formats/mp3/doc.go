// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III through github.com/hajimehoshi/go-mp3.
//
// The decoder always yields stereo float32 samples; mono files are duplicated
// across both channels by go-mp3. When the underlying reader is seekable the
// total length is known up front and exposed through audio.FrameCounter, which
// lets the PCM cache size its buffers once.
package mp3
