// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrNoChannels     = errors.New("source reports zero channels")
	ErrTooLong        = errors.New("source exceeds frame limit")
	ErrBitDepth       = errors.New("unsupported PCM bit depth")
)
