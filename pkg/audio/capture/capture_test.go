package capture

import (
	"bytes"
	"io"
	"testing"

	"github.com/praxislabs/vocalis/pkg/audio/pcm"
)

func TestReaderSource_Read(t *testing.T) {
	samples := []int16{1, 2, 3, 4, 5, 6, 7, 8}
	src := NewReaderSource(bytes.NewReader(pcm.SamplesToBytes(samples)), pcm.L16Mono24K)
	defer src.Close()

	buf := make([]int16, 3)
	var got []int16
	for {
		n, err := src.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
		got = append(got, buf[:n]...)
	}

	if len(got) != len(samples) {
		t.Fatalf("read %d samples; want %d", len(got), len(samples))
	}
	for i, v := range samples {
		if got[i] != v {
			t.Errorf("sample[%d] = %d; want %d", i, got[i], v)
		}
	}
}

func TestReaderSource_Empty(t *testing.T) {
	src := NewReaderSource(bytes.NewReader(nil), pcm.L16Mono24K)
	buf := make([]int16, 4)
	if _, err := src.Read(buf); err != io.EOF {
		t.Errorf("Read on empty source = %v; want io.EOF", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.EchoCancellation || !cfg.NoiseSuppression || !cfg.AutoGainControl {
		t.Error("default config should enable all DSP stages")
	}
	if cfg.Format() != pcm.L16Mono48K {
		t.Errorf("default format = %v; want %v", cfg.Format(), pcm.L16Mono48K)
	}
}

func TestStream_Mute(t *testing.T) {
	s := NewStream(nil)
	if s.Muted() {
		t.Error("new stream should be unmuted")
	}
	s.SetMuted(true)
	if !s.Muted() {
		t.Error("stream should be muted")
	}
	s.SetMuted(false)
	if s.Muted() {
		t.Error("stream should be unmuted again")
	}
}

func TestStream_Empty(t *testing.T) {
	if !NewStream(nil).Empty() {
		t.Error("stream with no source and no tracks should be empty")
	}
	src := NewReaderSource(bytes.NewReader(nil), pcm.L16Mono24K)
	if NewStream(src).Empty() {
		t.Error("stream with a source should not be empty")
	}
}

func TestStream_CloseIdempotent(t *testing.T) {
	src := &countingSource{}
	s := NewStream(src)
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if src.closes != 1 {
		t.Errorf("source closed %d times; want 1", src.closes)
	}
}

type countingSource struct {
	closes int
}

func (c *countingSource) Read([]int16) (int, error) { return 0, io.EOF }
func (c *countingSource) Format() pcm.Format        { return pcm.L16Mono24K }
func (c *countingSource) Close() error {
	c.closes++
	return nil
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	if err := sink.WritePCM([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WritePCM error: %v", err)
	}
	if buf.Len() != 4 {
		t.Errorf("wrote %d bytes; want 4", buf.Len())
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := sink.WritePCM([]byte{5}); err == nil {
		t.Error("WritePCM after Close should fail")
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
}

func TestResample_Identity(t *testing.T) {
	src := NewReaderSource(bytes.NewReader(pcm.SamplesToBytes([]int16{1, 2, 3})), pcm.L16Mono24K)
	out, err := Resample(src, pcm.L16Mono24K)
	if err != nil {
		t.Fatalf("Resample error: %v", err)
	}
	if out != src {
		t.Error("identity resample should return the source unchanged")
	}
}

func TestResample_Downmix(t *testing.T) {
	// Stereo 48k to mono 48k: pure channel fold, no rate conversion.
	stereo := []int16{100, 200, 300, 500}
	src := NewReaderSource(bytes.NewReader(pcm.SamplesToBytes(stereo)), pcm.L16Stereo48K)
	out, err := Resample(src, pcm.L16Mono48K)
	if err != nil {
		t.Fatalf("Resample error: %v", err)
	}
	defer out.Close()

	buf := make([]int16, 8)
	n, err := out.Read(buf)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 2 || buf[0] != 150 || buf[1] != 400 {
		t.Errorf("got %v; want [150 400]", buf[:n])
	}
}

func TestResample_RateConversion(t *testing.T) {
	// One second of 48 kHz silence should come out as roughly one
	// second of 24 kHz audio.
	in := make([]int16, 48000)
	src := NewReaderSource(bytes.NewReader(pcm.SamplesToBytes(in)), pcm.L16Mono48K)
	out, err := Resample(src, pcm.L16Mono24K)
	if err != nil {
		t.Fatalf("Resample error: %v", err)
	}
	defer out.Close()

	total := 0
	buf := make([]int16, 4096)
	for {
		n, err := out.Read(buf)
		total += n
		if err != nil {
			break
		}
	}

	// Allow for resampler edge effects.
	if total < 20000 || total > 26000 {
		t.Errorf("output samples = %d; want ~24000", total)
	}
}

func TestRTPWriter(t *testing.T) {
	track, err := NewOpusTrack("session-audio")
	if err != nil {
		t.Fatalf("NewOpusTrack error: %v", err)
	}
	w := NewRTPWriter(track)

	// An unbound track drops packets; the writer should still accept
	// frames and advance its clock without error.
	for i := 0; i < 3; i++ {
		if err := w.WriteOpus([]byte{0xfc}, 960); err != nil {
			t.Fatalf("WriteOpus error: %v", err)
		}
	}
}

func TestResample_UpmixRejected(t *testing.T) {
	src := NewReaderSource(bytes.NewReader(nil), pcm.L16Mono48K)
	if _, err := Resample(src, pcm.L16Stereo48K); err == nil {
		t.Error("mono to stereo upmix should be rejected")
	}
}
