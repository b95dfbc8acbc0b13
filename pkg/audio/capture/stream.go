package capture

import (
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v3"
)

// Stream is the session's outbound audio bundle: an optional PCM
// source (for the data-channel append path) and zero or more local
// media tracks (for the RTP path). It is exclusively owned by one
// session; other components receive it explicitly rather than through
// any global handle.
type Stream struct {
	mu     sync.Mutex
	source Source
	tracks []webrtc.TrackLocal
	muted  atomic.Bool
	closed bool
}

// NewStream creates a Stream around a PCM source. src may be nil when
// the stream carries only media tracks.
func NewStream(src Source) *Stream {
	return &Stream{source: src}
}

// AddTrack attaches a local media track to the stream.
func (s *Stream) AddTrack(t webrtc.TrackLocal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = append(s.tracks, t)
}

// Source returns the PCM source, or nil.
func (s *Stream) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Tracks returns the local media tracks to attach to the transport.
func (s *Stream) Tracks() []webrtc.TrackLocal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]webrtc.TrackLocal, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Empty reports whether the stream has neither a source nor tracks,
// i.e. there is no local audio to send.
func (s *Stream) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source == nil && len(s.tracks) == 0
}

// SetMuted toggles the input mute flag. Muted audio is dropped before
// it reaches the transport; the devices stay open.
func (s *Stream) SetMuted(muted bool) {
	s.muted.Store(muted)
}

// Muted reports the input mute flag.
func (s *Stream) Muted() bool {
	return s.muted.Load()
}

// Close stops the PCM source. Safe to call more than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.source != nil {
		return s.source.Close()
	}
	return nil
}
