package capture

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
)

// Opus RTP payload type used on the media track.
const opusPayloadType = 111

// NewOpusTrack creates a local RTP track for sending Opus audio.
func NewOpusTrack(streamID string) (*webrtc.TrackLocalStaticRTP, error) {
	return webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio",
		streamID,
	)
}

// RTPWriter packetizes encoded Opus frames onto a local track,
// managing SSRC, sequence numbers, and timestamps.
type RTPWriter struct {
	track     *webrtc.TrackLocalStaticRTP
	ssrc      uint32
	seq       uint32
	timestamp uint32
}

// NewRTPWriter creates an RTPWriter for the track with a random SSRC.
func NewRTPWriter(track *webrtc.TrackLocalStaticRTP) *RTPWriter {
	return &RTPWriter{
		track: track,
		ssrc:  rand.Uint32(),
	}
}

// WriteOpus sends one encoded Opus frame covering the given number of
// samples at the track clock rate.
func (w *RTPWriter) WriteOpus(payload []byte, samples uint32) error {
	seq := uint16(atomic.AddUint32(&w.seq, 1))
	ts := atomic.AddUint32(&w.timestamp, samples)

	packet := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    opusPayloadType,
			SequenceNumber: seq,
			Timestamp:      ts,
			SSRC:           w.ssrc,
		},
		Payload: payload,
	}
	return w.track.WriteRTP(packet)
}
