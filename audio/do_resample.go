// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/ambience/utils"
)

// ResampleToMono16 drains src through a Resampler and a MonoMixer and returns
// the whole stream as 16-bit PCM at targetRate.
//
// Returns the samples, the output rate (same as targetRate) and any
// non-EOF error hit while reading.
func ResampleToMono16(src Source, targetRate int, bufferSize int) ([]int16, int, error) {
	var in Source = src
	if src.SampleRate() != targetRate {
		in = NewResampler(src, targetRate)
	}
	mono := NewMonoMixer(in)

	pcm16 := make([]int16, 0, targetRate)
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		for _, v := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(v))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("resampling to mono: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return pcm16, targetRate, nil
}
