// Package capture acquires local audio for a voice session.
//
// A Source yields raw PCM frames from an input device (or a file, or a
// test fixture). A Stream bundles the session's outbound audio (PCM
// source, media tracks, and the input mute flag) under one owner, so
// the session can stop everything with a single Close.
package capture

import (
	"errors"
	"io"

	"github.com/praxislabs/vocalis/pkg/audio/pcm"
)

// ErrNoDevice is returned when no audio input device is available or
// permission to use it was denied.
var ErrNoDevice = errors.New("capture: no audio input device available")

// Source is a stream of PCM audio samples from a local input.
type Source interface {
	// Read fills buf with samples and returns the number of samples
	// read. Returns io.EOF when the source is exhausted or closed.
	Read(buf []int16) (int, error)

	// Format returns the PCM format of the samples.
	Format() pcm.Format

	// Close releases the underlying device or reader.
	Close() error
}

// Config holds the DSP settings requested when acquiring an input
// device. The flags describe processing applied by the device layer;
// they are carried so the acquiring backend can honor them.
type Config struct {
	SampleRate       int  `yaml:"sample_rate,omitempty"`
	Channels         int  `yaml:"channels,omitempty"`
	EchoCancellation bool `yaml:"echo_cancellation"`
	NoiseSuppression bool `yaml:"noise_suppression"`
	AutoGainControl  bool `yaml:"auto_gain_control"`
}

// DefaultConfig returns the standard capture settings: 48 kHz mono with
// all DSP stages enabled.
func DefaultConfig() Config {
	return Config{
		SampleRate:       48000,
		Channels:         1,
		EchoCancellation: true,
		NoiseSuppression: true,
		AutoGainControl:  true,
	}
}

// Format returns the PCM format implied by the config.
func (c Config) Format() pcm.Format {
	return pcm.Format{Rate: c.SampleRate, Channels: c.Channels}
}

// readerSource adapts an io.Reader of little-endian 16-bit PCM bytes
// into a Source.
type readerSource struct {
	r      io.Reader
	c      io.Closer
	format pcm.Format
	buf    []byte
}

// NewReaderSource wraps r as a Source of the given format. If r also
// implements io.Closer it is closed by Close.
func NewReaderSource(r io.Reader, format pcm.Format) Source {
	s := &readerSource{r: r, format: format}
	if c, ok := r.(io.Closer); ok {
		s.c = c
	}
	return s
}

func (s *readerSource) Read(buf []int16) (int, error) {
	if cap(s.buf) < len(buf)*2 {
		s.buf = make([]byte, len(buf)*2)
	}
	n, err := io.ReadFull(s.r, s.buf[:len(buf)*2])
	if n >= 2 {
		samples := pcm.BytesToSamples(s.buf[:n])
		copy(buf, samples)
		return len(samples), nil
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return 0, err
}

func (s *readerSource) Format() pcm.Format {
	return s.format
}

func (s *readerSource) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}
