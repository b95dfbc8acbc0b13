package voice

import "errors"

var (
	// ErrSessionActive is returned by Start when the session is not
	// idle. Exactly one start flow may be in progress per session;
	// the caller must stop the existing one first.
	ErrSessionActive = errors.New("voice: session already active")

	// ErrMediaAccessDenied is returned by Start when no local audio
	// stream is available (no device, or permission denied). The
	// session stays idle and no transport is created.
	ErrMediaAccessDenied = errors.New("voice: microphone unavailable or permission denied")

	// ErrNegotiationTimeout is returned by Start when the transport
	// does not reach the connected state within the connect timeout.
	ErrNegotiationTimeout = errors.New("voice: transport negotiation timed out")

	// ErrTransportLost is the cause recorded when an established
	// transport reaches failed or disconnected. There is no automatic
	// reconnect.
	ErrTransportLost = errors.New("voice: transport lost")
)
