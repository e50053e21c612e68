// SPDX-License-Identifier: EPL-2.0

package main

import (
	"encoding/binary"
	"math"

	"github.com/ik5/ambience"
	"github.com/ik5/ambience/device"
)

// output is the io.Reader oto pulls from: the Manager's software mix plus
// the delegated device, as little-endian float32.
type output struct {
	m        *ambience.Manager
	dev      *device.Device
	channels int
	buf      []float32
}

func newOutput(m *ambience.Manager, dev *device.Device, channels, frames int) *output {
	return &output{
		m:        m,
		dev:      dev,
		channels: channels,
		buf:      make([]float32, max(frames, 1)*channels),
	}
}

func (o *output) Read(p []byte) (int, error) {
	samples := len(p) / 4
	samples -= samples % o.channels
	if samples == 0 {
		return 0, nil
	}

	// oto asks for about the same amount every time
	if len(o.buf) < samples {
		o.buf = make([]float32, samples)
	}
	buf := o.buf[:samples]

	o.m.RenderBuffer(buf, samples/o.channels, o.channels)
	if o.dev != nil {
		if err := o.dev.Mix(buf, o.channels); err != nil {
			return 0, err
		}
	}

	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return samples * 4, nil
}
