// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"math"

	"github.com/ik5/ambience/formats/wav"
	"github.com/ik5/ambience/utils"
)

// ConstantWAV encodes a 16-bit WAV of the given length holding value on every channel.
func ConstantWAV(sampleRate, channels int, seconds float64, value float32) []byte {
	frames := int(math.Round(seconds * float64(sampleRate)))
	samples := make([]int16, frames*channels)
	v := utils.Float32ToInt16(value)
	for i := range samples {
		samples[i] = v
	}

	var buf bytes.Buffer
	if err := wav.WritePCM16(&buf, sampleRate, channels, samples); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
