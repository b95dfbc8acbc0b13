package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v3"
)

// Transport is one negotiated peer connection with its ordered,
// reliable control channel and media tracks. A transport is owned
// exclusively by one session; it must be fully closed before another
// is created for the same session.
type Transport struct {
	pc *webrtc.PeerConnection
	dc *webrtc.DataChannel

	mu          sync.Mutex
	remoteTrack *webrtc.TrackRemote

	closing   atomic.Bool
	lostOnce  sync.Once
	chanOnce  sync.Once
	closeOnce sync.Once
}

// Send marshals event as JSON and sends it over the control channel.
func (t *Transport) Send(event map[string]any) error {
	if t.dc == nil || t.dc.ReadyState() != webrtc.DataChannelStateOpen {
		return fmt.Errorf("realtime: control channel not open")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		str := string(data)
		if len(str) > 500 {
			str = str[:500] + "..."
		}
		slog.Debug("sending event", "content", str)
	}

	return t.dc.Send(data)
}

// RemoteTrack returns the remote audio track, or nil if none has
// arrived yet.
func (t *Transport) RemoteTrack() *webrtc.TrackRemote {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remoteTrack
}

// CloseChannel closes the control channel only. Safe to call more
// than once.
func (t *Transport) CloseChannel() error {
	var err error
	t.chanOnce.Do(func() {
		if t.dc != nil {
			err = t.dc.Close()
		}
	})
	return err
}

// Close tears the transport down: control channel first, then the
// peer connection. Idempotent.
func (t *Transport) Close() error {
	t.closing.Store(true)
	var err error
	t.closeOnce.Do(func() {
		t.CloseChannel()
		if t.pc != nil {
			err = t.pc.Close()
		}
	})
	return err
}

func (t *Transport) setRemoteTrack(track *webrtc.TrackRemote) {
	t.mu.Lock()
	t.remoteTrack = track
	t.mu.Unlock()
}

// reportLost delivers the TransportLost notification at most once,
// and never for a teardown the local side initiated.
func (t *Transport) reportLost(reason string, fn func(string)) {
	if t.closing.Load() {
		return
	}
	t.lostOnce.Do(func() {
		if fn != nil {
			fn(reason)
		}
	})
}

// readRemoteTrack pumps RTP payloads from the remote audio track to
// the handler until the track ends.
func (t *Transport) readRemoteTrack(track *webrtc.TrackRemote, onAudio func([]byte)) {
	for {
		packet, _, err := track.ReadRTP()
		if err != nil {
			slog.Debug("remote track read ended", "error", err)
			return
		}
		if onAudio != nil {
			onAudio(packet.Payload)
		}
	}
}
