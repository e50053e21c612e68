// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrOnlyPCMSupported     = errors.New("only integer PCM WAV supported")
	ErrUnsupportedWavChunks = errors.New("unsupported WAV chunks")
	ErrUnsupportedBitDepth  = errors.New("unsupported WAV bit depth")
)
