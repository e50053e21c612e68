// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	ErrNoDecoder  = errors.New("no decoder for stream format")
	ErrEmptyLoop  = errors.New("looping stream produced no audio")
	ErrNoOpener   = errors.New("stream asset has no opener")
	ErrBadChannel = errors.New("destination is not interleaved")
)
