// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// IntScale returns the factor that maps signed integer PCM of the given bit
// depth onto [-1, 1).
func IntScale(bitDepth int) (float32, error) {
	switch bitDepth {
	case 8:
		return 1.0 / 128.0, nil
	case 16:
		return 1.0 / 32768.0, nil
	case 24:
		return 1.0 / 8388608.0, nil
	case 32:
		return 1.0 / 2147483648.0, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
}
