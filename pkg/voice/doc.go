// Package voice manages real-time voice sessions against a remote
// speech endpoint.
//
// A Session owns one voice interaction end to end: it requests a
// short-lived credential, negotiates the peer transport, drives the
// event-channel protocol, tracks the session lifecycle state, and
// aggregates the conversation transcript. The local audio stream and
// the playback sink are exclusively owned by the active session and
// are only toggled through the session's own mute operations.
//
//	sess, err := voice.NewSession(voice.Config{
//		Credentials: realtime.NewBroker(brokerURL),
//		Dialer: voice.NegotiatorDialer{N: realtime.NewNegotiator(realtime.NegotiatorConfig{
//			Exchange: &realtime.HTTPExchanger{URL: speechURL},
//		})},
//		Context: realtime.SessionContext{ClientID: "client-1", Kind: realtime.KindAssistant},
//	})
//	if err != nil {
//		return err
//	}
//	if err := sess.Start(ctx, stream, sink); err != nil {
//		return err
//	}
//	defer sess.Stop()
package voice
