package voice

// State is the session lifecycle state.
//
// The lifecycle runs idle, connecting, connected, then alternates
// between connected, listening (user speech detected) and speaking
// (remote endpoint vocalizing) until an explicit stop returns it to
// idle. StateError is reachable from any non-idle state and is
// terminal until the caller stops the session.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateListening  State = "listening"
	StateSpeaking   State = "speaking"
	StateError      State = "error"
)

// Active reports whether the session is between start and stop.
func (s State) Active() bool {
	return s != StateIdle && s != StateError
}

// Live reports whether the transport is established and usable.
func (s State) Live() bool {
	return s == StateConnected || s == StateListening || s == StateSpeaking
}

func (s State) String() string {
	return string(s)
}
