// Package realtime implements the client side of a low-latency voice
// protocol against an AI speech endpoint.
//
// A session is carried over a negotiated WebRTC peer connection: audio
// flows on media tracks while structured events flow over one ordered,
// reliable data channel as UTF-8 JSON envelopes with a "type"
// discriminator.
//
// # Establishing a transport
//
//	broker := realtime.NewBroker(credentialURL)
//	cred, err := broker.Request(ctx, realtime.SessionContext{
//	    ClientID: clientID,
//	    Kind:     realtime.KindAssistant,
//	})
//	if err != nil {
//	    return err
//	}
//
//	neg := realtime.NewNegotiator(realtime.NegotiatorConfig{
//	    Exchange: &realtime.HTTPExchanger{URL: speechURL},
//	})
//	transport, err := neg.Establish(ctx, cred, stream, handlers)
//
// The offer/answer exchange is pluggable: HTTPExchanger POSTs the raw
// SDP directly to the speech endpoint, SocketExchanger runs the same
// exchange over a signaling WebSocket. The negotiator is agnostic to
// which one carries the exchange.
//
// # Known limitation
//
// Only STUN rendezvous servers are configured, no TURN relays. Peers
// behind symmetric NAT may fail to connect; callers should surface the
// negotiation timeout rather than retry silently.
package realtime
