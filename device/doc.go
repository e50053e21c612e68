// SPDX-License-Identifier: EPL-2.0

// Package device is an output device for tracks the Manager delegates:
// spatial sequences and clips that are streamed rather than decoded into
// memory.
//
// Every attached voice becomes a beep.Streamer, scaled for distance and
// panned by angle, and mixed with the others in a beep.Mixer. The host pulls
// Device.Stream, or Device.Mix for interleaved float32, from its audio
// callback.
package device
