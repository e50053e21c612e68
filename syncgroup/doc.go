// SPDX-License-Identifier: EPL-2.0

// Package syncgroup lines up tracks that share a named group on a common
// loop length and start time.
//
// Each member declares a Mode built from Repeat, Stretch and Squeeze. The
// group length is taken from the longest member that may not stretch; each
// member then gets a speed factor that makes its pass fit that length.
// Members joining late fast-forward so they stay in phase with the others.
package syncgroup
