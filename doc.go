// SPDX-License-Identifier: EPL-2.0

// Package ambience is a runtime mixer for layered ambient audio.
//
// A Manager owns spatial zones, globally active Sequences and the named
// Values and Events their requirements read. The host calls Tick once per
// control frame with the listener position and RenderBuffer from its audio
// callback:
//
//	m := ambience.New(ambience.Options{Resolver: pcmcache.FSResolver{FS: assets}})
//	m.RegisterZone(forest)
//	m.SetValue("rain", 0.6)
//
//	// control loop
//	m.Tick(dt, player.Position())
//
//	// audio callback
//	m.RenderBuffer(out, frames, 2)
//
// On every tick the Manager takes, for each Sequence, the strongest fade of
// any zone or global registration that lists it, multiplies it by the
// Sequence's requirement fade and hands the result to the Sequence's track,
// creating or retiring tracks as needed. Tracks that must be positioned
// around the listener, or whose clips can only be streamed, play through a
// Delegate instead of RenderBuffer.
package ambience
