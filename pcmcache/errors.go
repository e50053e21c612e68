// SPDX-License-Identifier: EPL-2.0

package pcmcache

import "errors"

var (
	ErrEmptyClipID    = errors.New("empty clip id")
	ErrNoResolver     = errors.New("no asset resolver configured")
	ErrEmptyClip      = errors.New("clip decoded to zero frames")
	ErrDecoderPanic   = errors.New("decoder panicked")
	ErrLoadFailed     = errors.New("clip failed to load")
	ErrNotExtractable = errors.New("clip cannot be extracted offline")
)
