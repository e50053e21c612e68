// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE PCM.
//
// Decoding is backed by github.com/go-audio/wav, so non-canonical chunk
// layouts (LIST, fact, ...) and 8/16/24/32-bit integer PCM are accepted.
// Samples come out of the returned audio.Source as float32 in [-1, 1].
//
//	src, err := wav.Decoder{}.Decode(file)
//
// WriteWAV16 and WritePCM16 produce 16-bit PCM files, used by the offline
// renderer:
//
//	err := wav.WriteWAV16(out, 48000, samples)
package wav
