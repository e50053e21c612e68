// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	return WritePCM16(w, sampleRate, 1, samples)
}

// WritePCM16 writes interleaved 16-bit PCM with the given channel count.
// len(samples) must be a multiple of channels.
func WritePCM16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", errInterleave, len(samples), channels)
	}

	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8
	dataSize := uint32(len(samples) * 2)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}

	const chunk = 8192
	buf := make([]byte, 0, min(len(samples), chunk)*2)

	for len(samples) > 0 {
		n := min(len(samples), chunk)
		buf = buf[:n*2]
		for i, s := range samples[:n] {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w", err)
		}
		samples = samples[n:]
	}

	return nil
}

var errInterleave = errors.New("samples are not whole frames")
