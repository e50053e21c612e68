// SPDX-License-Identifier: EPL-2.0

// Package track implements the playing instance of a Sequence.
//
// A Track walks its clip list in order or in a weighted random order,
// crossfades between clips, inserts random delays at clip boundaries and
// fades in and out as its target changes. Render produces frames for the
// software mixer; Filter does the same for a delegated output device.
//
// Control code sets targets through UpdateTrackData. Per-frame state is only
// touched by Render and Filter, which never allocate, block or decode.
package track
