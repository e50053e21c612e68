// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF/AIFF-C integer PCM through github.com/go-audio/aiff.
//
// Non-seekable readers are buffered in memory first because the chunk parser
// seeks. Supported sample sizes are 8, 16, 24 and 32 bits.
package aiff
