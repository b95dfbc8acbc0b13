package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pion/webrtc/v3"

	"github.com/praxislabs/vocalis/pkg/audio/capture"
)

// DefaultICEServers is the fixed rendezvous (STUN) server list used
// when none is configured. No TURN relays are configured; see the
// package doc for the connectivity implication.
var DefaultICEServers = []string{"stun:stun.l.google.com:19302"}

// DefaultChannelLabel is the control channel label the remote speech
// endpoint expects.
const DefaultChannelLabel = "oai-events"

// NegotiatorConfig configures transport establishment.
type NegotiatorConfig struct {
	// ICEServers is the STUN server list. Defaults to
	// DefaultICEServers when empty.
	ICEServers []string

	// Exchange carries the offer/answer exchange. Required.
	Exchange OfferExchanger

	// ChannelLabel overrides the control channel label.
	ChannelLabel string
}

// Handlers receives transport callbacks. All callbacks are optional;
// nil handlers are skipped.
type Handlers struct {
	// OnOpen fires when the control channel opens.
	OnOpen func()

	// OnMessage fires for every raw control-channel frame.
	OnMessage func(data []byte)

	// OnAudio fires for each remote media frame (RTP payload bytes).
	OnAudio func(payload []byte)

	// OnConnected fires when the peer connection reaches connected.
	OnConnected func()

	// OnTransportLost fires at most once when the connection reaches
	// failed or disconnected after establishment. It is delivered
	// asynchronously; Establish itself never reports these states.
	OnTransportLost func(reason string)
}

// Negotiator establishes peer transports toward the remote speech
// endpoint.
type Negotiator struct {
	cfg NegotiatorConfig
}

// NewNegotiator creates a Negotiator. cfg.Exchange is required.
func NewNegotiator(cfg NegotiatorConfig) *Negotiator {
	if len(cfg.ICEServers) == 0 {
		cfg.ICEServers = DefaultICEServers
	}
	if cfg.ChannelLabel == "" {
		cfg.ChannelLabel = DefaultChannelLabel
	}
	return &Negotiator{cfg: cfg}
}

// Establish negotiates a peer connection authorized by cred, attaching
// the local tracks of stream. The control channel is created before
// the offer is generated so the far end sees it in the initial session
// description. Establish returns once the answer is applied; reaching
// the connected state is observed asynchronously through the handlers.
// The transport itself imposes no timeout, so the caller must bound
// the connecting phase.
//
// On any failing step every intermediate resource is closed before the
// error is returned.
func (n *Negotiator) Establish(ctx context.Context, cred *Credential, stream *capture.Stream, h Handlers) (*Transport, error) {
	if n.cfg.Exchange == nil {
		return nil, fmt.Errorf("realtime: negotiator has no offer exchanger")
	}
	if cred == nil || cred.Expired(time.Now()) {
		return nil, &Error{Code: CodeAuthFailure, Message: "credential missing or expired"}
	}

	iceServers := make([]webrtc.ICEServer, 0, len(n.cfg.ICEServers))
	for _, u := range n.cfg.ICEServers {
		iceServers = append(iceServers, webrtc.ICEServer{URLs: []string{u}})
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, fmt.Errorf("realtime: create peer connection: %w", err)
	}

	// The control channel must exist before the offer is generated.
	dc, err := pc.CreateDataChannel(n.cfg.ChannelLabel, nil)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("realtime: create control channel: %w", err)
	}

	transport := &Transport{pc: pc, dc: dc}

	dc.OnOpen(func() {
		slog.Debug("control channel open", "label", dc.Label())
		if h.OnOpen != nil {
			h.OnOpen()
		}
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if h.OnMessage != nil {
			h.OnMessage(msg.Data)
		}
	})

	if stream != nil {
		for _, track := range stream.Tracks() {
			if _, err := pc.AddTrack(track); err != nil {
				pc.Close()
				return nil, fmt.Errorf("realtime: add local track: %w", err)
			}
		}
	}

	// Request to receive audio only; no video.
	_, err = pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("realtime: add audio transceiver: %w", err)
	}

	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		slog.Debug("remote track received", "kind", track.Kind(), "codec", track.Codec().MimeType)
		if track.Kind() != webrtc.RTPCodecTypeAudio {
			return
		}
		transport.setRemoteTrack(track)
		go transport.readRemoteTrack(track, h.OnAudio)
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		slog.Debug("peer connection state", "state", state.String())
		switch state {
		case webrtc.PeerConnectionStateConnected:
			if h.OnConnected != nil {
				h.OnConnected()
			}
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateDisconnected:
			transport.reportLost(state.String(), h.OnTransportLost)
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("realtime: create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		return nil, fmt.Errorf("realtime: set local description: %w", err)
	}

	// Wait for ICE gathering so the offer carries all candidates.
	select {
	case <-webrtc.GatheringCompletePromise(pc):
	case <-ctx.Done():
		pc.Close()
		return nil, ctx.Err()
	}

	answer, err := n.cfg.Exchange.Exchange(ctx, cred, pc.LocalDescription().SDP)
	if err != nil {
		pc.Close()
		return nil, err
	}

	err = pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("realtime: set remote description: %w", err)
	}

	return transport, nil
}
