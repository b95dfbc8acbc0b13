package capture

import (
	"io"
	"sync"
)

// Sink is the playback endpoint for remote audio. It is exclusively
// owned by the active session and released as the final teardown step.
type Sink interface {
	// WritePCM plays one frame of raw PCM bytes.
	WritePCM(b []byte) error

	// Close releases the playback device or writer.
	Close() error
}

// writerSink adapts an io.Writer into a Sink.
type writerSink struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewWriterSink wraps w as a Sink. If w also implements io.Closer it
// is closed by Close.
func NewWriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) WritePCM(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return io.ErrClosedPipe
	}
	_, err := s.w.Write(b)
	return err
}

func (s *writerSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Discard is a Sink that drops all audio. Useful in tests and for
// transcript-only sessions.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) WritePCM([]byte) error { return nil }
func (discardSink) Close() error          { return nil }
