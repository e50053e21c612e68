// SPDX-License-Identifier: EPL-2.0

package requirement

import "errors"

var (
	ErrUnknownMode     = errors.New("unknown requirement mode")
	ErrUnnamedRange    = errors.New("value range has no name")
	ErrUnnamedEvent    = errors.New("event requirement has no name")
	ErrInvertedRange   = errors.New("value range min exceeds max")
	ErrNegativeFalloff = errors.New("value range falloff is negative")
)
