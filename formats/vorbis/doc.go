// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis through github.com/jfreymuth/oggvorbis.
//
// Vorbis is the usual container for long ambience beds: the decoder streams,
// so the PCM cache can materialise it once and delegated voices can stream it
// directly when a clip is marked for streaming.
package vorbis
