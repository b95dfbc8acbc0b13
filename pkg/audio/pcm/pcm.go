// Package pcm provides format descriptors and frame math for raw
// 16-bit little-endian PCM audio.
package pcm

import (
	"fmt"
	"time"
)

// Format describes a PCM audio stream: sample rate in Hz and channel
// count. Samples are always 16-bit signed little-endian.
type Format struct {
	Rate     int `json:"sampleRate"`
	Channels int `json:"channels"`
}

// Common formats.
var (
	// L16Mono16K is audio/L16; rate=16000; channels=1.
	L16Mono16K = Format{Rate: 16000, Channels: 1}
	// L16Mono24K is audio/L16; rate=24000; channels=1. This is the
	// input/output format the remote speech endpoint expects for pcm16.
	L16Mono24K = Format{Rate: 24000, Channels: 1}
	// L16Mono48K is audio/L16; rate=48000; channels=1, the usual
	// device capture rate.
	L16Mono48K = Format{Rate: 48000, Channels: 1}
	// L16Stereo48K is audio/L16; rate=48000; channels=2.
	L16Stereo48K = Format{Rate: 48000, Channels: 2}
)

// Depth returns the bit depth. Always 16.
func (f Format) Depth() int { return 16 }

// SampleBytes returns the number of bytes in one sample frame
// (all channels).
func (f Format) SampleBytes() int {
	return 2 * f.Channels
}

// BytesRate returns the byte rate of the audio data.
func (f Format) BytesRate() int {
	return f.Rate * f.SampleBytes()
}

// SamplesInDuration returns the number of sample frames in d.
func (f Format) SamplesInDuration(d time.Duration) int {
	return int(time.Duration(f.Rate) * d / time.Second)
}

// BytesInDuration returns the number of bytes in d.
func (f Format) BytesInDuration(d time.Duration) int {
	return f.SamplesInDuration(d) * f.SampleBytes()
}

// Duration returns the duration of the given number of bytes.
func (f Format) Duration(bytes int) time.Duration {
	if f.BytesRate() == 0 {
		return 0
	}
	return time.Duration(bytes) * time.Second / time.Duration(f.BytesRate())
}

// Valid reports whether the format is usable.
func (f Format) Valid() bool {
	return f.Rate > 0 && (f.Channels == 1 || f.Channels == 2)
}

// String returns the MIME-style description of the format.
func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.Rate, f.Channels)
}
