package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/praxislabs/vocalis/pkg/audio/capture"
	"github.com/praxislabs/vocalis/pkg/audio/pcm"
	"github.com/praxislabs/vocalis/pkg/realtime"
)

// DefaultConnectTimeout bounds the connecting phase. The negotiated
// transport has no intrinsic timeout, so the session enforces one.
const DefaultConnectTimeout = 15 * time.Second

// inputFrameDuration is the PCM chunk size pumped over the control
// channel per append message.
const inputFrameDuration = 20 * time.Millisecond

// CredentialSource issues one credential per session start.
type CredentialSource interface {
	Request(ctx context.Context, sc realtime.SessionContext) (*realtime.Credential, error)
}

// Transport is the negotiated control and media surface the session
// drives. Satisfied by *realtime.Transport.
type Transport interface {
	Send(event map[string]any) error
	CloseChannel() error
	Close() error
}

// Dialer establishes a Transport authorized by a credential.
type Dialer interface {
	Establish(ctx context.Context, cred *realtime.Credential, stream *capture.Stream, h realtime.Handlers) (Transport, error)
}

// NegotiatorDialer adapts a realtime.Negotiator to the Dialer
// interface.
type NegotiatorDialer struct {
	N *realtime.Negotiator
}

func (d NegotiatorDialer) Establish(ctx context.Context, cred *realtime.Credential, stream *capture.Stream, h realtime.Handlers) (Transport, error) {
	t, err := d.N.Establish(ctx, cred, stream, h)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Config configures a Session. Credentials and Dialer are required.
type Config struct {
	Credentials CredentialSource
	Dialer      Dialer

	// Context identifies the session to the credential endpoint.
	Context realtime.SessionContext

	// Instructions overrides the credential's behavior directive
	// when non-empty.
	Instructions string

	// Voice selects the remote voice for audio output.
	Voice string

	// TranscriptionModel selects the input transcription model.
	// Defaults to realtime.DefaultTranscriptionModel.
	TranscriptionModel string

	// TurnDetection is the voice-activity-detection policy pushed on
	// channel open. Defaults to realtime.DefaultTurnDetection().
	TurnDetection *realtime.TurnDetection

	// ConnectTimeout bounds the connecting phase. Defaults to
	// DefaultConnectTimeout.
	ConnectTimeout time.Duration

	Logger *slog.Logger

	// OnState observes lifecycle state changes.
	OnState func(State)

	// OnEntry observes each admitted transcript entry.
	OnEntry func(Entry)

	// OnRemoteDelta observes partial remote reply text.
	OnRemoteDelta func(string)

	// OnRemoteError observes error events reported by the remote
	// endpoint. The session remains connected.
	OnRemoteError func(*realtime.Error)
}

// Session is one voice interaction. It owns the transport, the local
// audio stream and the playback sink for its duration, and is safe for
// concurrent use.
type Session struct {
	id  string
	cfg Config
	log *slog.Logger

	mu          sync.Mutex
	state       State
	cause       error
	generation  int
	transport   Transport
	stream      *capture.Stream
	sink        capture.Sink
	transcript  *Transcript
	connected   chan struct{}
	startCancel context.CancelFunc
	pendingOpen *realtime.Credential

	outputMuted atomic.Bool
}

// NewSession creates an idle Session.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("voice: config missing credential source")
	}
	if cfg.Dialer == nil {
		return nil, fmt.Errorf("voice: config missing dialer")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	id := uuid.New().String()
	return &Session{
		id:         id,
		cfg:        cfg,
		log:        cfg.Logger.With("session", id),
		state:      StateIdle,
		transcript: NewTranscript(),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the cause when the session is in StateError, else nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// Transcript returns the session's conversation log.
func (s *Session) Transcript() *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// Start brings the session up: requests a credential, establishes the
// transport with stream's tracks attached, and blocks until the peer
// connection is live or the connect timeout elapses. The stream and
// sink become exclusively owned by the session until Stop.
//
// Returns ErrSessionActive when not idle, and ErrMediaAccessDenied
// when stream carries no local audio; in both cases the session is
// left untouched. Any establishment failure transitions the session
// to StateError with the cause retrievable via Err.
func (s *Session) Start(ctx context.Context, stream *capture.Stream, sink capture.Sink) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionActive
	}
	if stream == nil || stream.Empty() {
		s.mu.Unlock()
		return ErrMediaAccessDenied
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	s.generation++
	gen := s.generation
	s.stream = stream
	s.sink = sink
	s.transcript = NewTranscript()
	s.connected = make(chan struct{})
	s.startCancel = cancel
	connected := s.connected
	s.state = StateConnecting
	s.mu.Unlock()
	s.notifyState(StateConnecting)

	cred, err := s.cfg.Credentials.Request(cctx, s.cfg.Context)
	if err != nil {
		return s.failStart(gen, err)
	}

	h := realtime.Handlers{
		OnOpen:          func() { s.channelOpen(gen, cred) },
		OnMessage:       func(data []byte) { s.handleFrame(gen, data) },
		OnAudio:         func(payload []byte) { s.playAudio(gen, payload) },
		OnConnected:     func() { s.transportConnected(gen) },
		OnTransportLost: func(reason string) { s.transportLost(gen, reason) },
	}

	transport, err := s.cfg.Dialer.Establish(cctx, cred, stream, h)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = ErrNegotiationTimeout
		}
		return s.failStart(gen, err)
	}

	s.mu.Lock()
	if gen != s.generation {
		// Stopped while establishing; discard the late transport.
		s.mu.Unlock()
		transport.Close()
		return nil
	}
	s.transport = transport
	pending := s.pendingOpen
	s.pendingOpen = nil
	s.mu.Unlock()

	// The control channel may have opened while the transport was
	// still being handed over; replay the deferred open now.
	if pending != nil {
		s.channelOpen(gen, pending)
	}

	select {
	case <-connected:
		return nil
	case <-cctx.Done():
		if ctx.Err() != nil {
			return s.failStart(gen, ctx.Err())
		}
		return s.failStart(gen, ErrNegotiationTimeout)
	}
}

// Stop tears the session down in order: control channel, transport,
// local media tracks, playback sink. Idempotent and safe from any
// state, including mid-establishment, in which case the in-flight
// establishment's callbacks become no-ops.
func (s *Session) Stop() {
	s.mu.Lock()
	s.generation++
	transport := s.transport
	stream := s.stream
	sink := s.sink
	cancel := s.startCancel
	was := s.state
	s.transport = nil
	s.stream = nil
	s.sink = nil
	s.startCancel = nil
	s.pendingOpen = nil
	s.cause = nil
	s.state = StateIdle
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if transport != nil {
		transport.CloseChannel()
		transport.Close()
	}
	if stream != nil {
		stream.Close()
	}
	if sink != nil {
		sink.Close()
	}
	if was != StateIdle {
		s.log.Info("session stopped")
		s.notifyState(StateIdle)
	}
}

// SetInputMuted toggles the microphone mute flag. Muted input is
// dropped before it reaches the transport; the device stays open.
func (s *Session) SetInputMuted(muted bool) {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()
	if stream != nil {
		stream.SetMuted(muted)
	}
}

// InputMuted reports the microphone mute flag.
func (s *Session) InputMuted() bool {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()
	return stream != nil && stream.Muted()
}

// SetOutputMuted toggles playback mute. Muted remote audio is dropped
// before it reaches the sink.
func (s *Session) SetOutputMuted(muted bool) {
	s.outputMuted.Store(muted)
}

// OutputMuted reports the playback mute flag.
func (s *Session) OutputMuted() bool {
	return s.outputMuted.Load()
}

// SendText sends a user text message over the control channel and asks
// the remote endpoint to respond. The text is admitted to the
// transcript as a user entry.
func (s *Session) SendText(text string) error {
	s.mu.Lock()
	transport := s.transport
	live := s.state.Live()
	gen := s.generation
	s.mu.Unlock()

	if transport == nil || !live {
		return fmt.Errorf("voice: session not connected")
	}
	if err := transport.Send(realtime.UserTextEvent(text)); err != nil {
		return err
	}
	if err := transport.Send(realtime.ResponseCreateEvent()); err != nil {
		return err
	}
	s.admit(gen, text, SpeakerUser)
	return nil
}

// AdmitText admits an utterance arriving through an out-of-band
// channel (for example a textual confirmation call running alongside
// the protocol events). Deduplication against protocol-delivered
// entries applies as usual.
func (s *Session) AdmitText(text string, speaker Speaker) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()
	s.admit(gen, text, speaker)
}

// channelOpen pushes the session configuration and starts the input
// pump. The remote endpoint does nothing useful until it receives the
// session control message.
func (s *Session) channelOpen(gen int, cred *realtime.Credential) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if s.transport == nil {
		// The channel opened before Start finished storing the
		// transport; Start replays the open once it has.
		s.pendingOpen = cred
		s.mu.Unlock()
		return
	}
	transport := s.transport
	stream := s.stream
	s.mu.Unlock()

	instructions := cred.Instructions
	if s.cfg.Instructions != "" {
		instructions = s.cfg.Instructions
	}
	model := s.cfg.TranscriptionModel
	if model == "" {
		model = realtime.DefaultTranscriptionModel
	}
	turnDetection := s.cfg.TurnDetection
	if turnDetection == nil {
		turnDetection = realtime.DefaultTurnDetection()
	}
	format := cred.Audio.Encoding
	if format == "" {
		format = realtime.AudioFormatPCM16
	}

	update := realtime.SessionUpdateEvent(&realtime.SessionConfig{
		Modalities:              []string{"text", "audio"},
		Instructions:            instructions,
		Voice:                   s.cfg.Voice,
		InputAudioFormat:        format,
		OutputAudioFormat:       format,
		InputAudioTranscription: &realtime.TranscriptionConfig{Model: model},
		TurnDetection:           turnDetection,
	})
	if err := transport.Send(update); err != nil {
		s.log.Warn("session configuration send failed", "error", err)
	}

	if stream != nil && stream.Source() != nil {
		go s.pumpInput(gen, stream, transport)
	}
}

// pumpInput reads PCM frames from the local source and appends them
// over the control channel until the source ends or the session moves
// on.
func (s *Session) pumpInput(gen int, stream *capture.Stream, transport Transport) {
	src := stream.Source()
	format := src.Format()
	frame := make([]int16, format.SamplesInDuration(inputFrameDuration))
	appended := false

	for {
		n, err := src.Read(frame)
		if err != nil {
			if err != io.EOF {
				s.log.Warn("input read failed", "error", err)
				return
			}
			// A finite source ran out. Commit the buffer so the far
			// end finalizes whatever speech it holds.
			if appended && !s.stale(gen) {
				if err := transport.Send(realtime.CommitInputEvent()); err != nil {
					s.log.Debug("input commit send failed", "error", err)
				}
			}
			return
		}
		if s.stale(gen) {
			return
		}
		if stream.Muted() {
			continue
		}
		if err := transport.Send(realtime.AppendAudioEvent(pcm.SamplesToBytes(frame[:n]))); err != nil {
			s.log.Debug("input send failed", "error", err)
			return
		}
		appended = true
	}
}

// playAudio forwards one remote audio frame to the playback sink.
func (s *Session) playAudio(gen int, payload []byte) {
	if s.outputMuted.Load() {
		return
	}
	s.mu.Lock()
	sink := s.sink
	ok := gen == s.generation
	s.mu.Unlock()
	if !ok || sink == nil {
		return
	}
	if err := sink.WritePCM(payload); err != nil {
		s.log.Debug("playback write failed", "error", err)
	}
}

// handleFrame parses and dispatches one control-channel frame.
// Malformed frames are logged and discarded; they never change state
// and never close the channel.
func (s *Session) handleFrame(gen int, data []byte) {
	event, err := realtime.ParseServerEvent(data)
	if err != nil {
		s.log.Warn("discarding malformed event", "error", err)
		return
	}
	s.dispatch(gen, event)
}

// dispatch applies one protocol event to the state machine. Events are
// delivered in arrival order on a single goroutine; unknown types are
// ignored so the taxonomy can evolve.
func (s *Session) dispatch(gen int, event *realtime.ServerEvent) {
	switch event.Type {
	case realtime.EventTypeError:
		if event.ErrorInfo == nil {
			return
		}
		remoteErr := event.ErrorInfo.ToError()
		s.log.Error("remote endpoint reported error",
			"type", remoteErr.Type, "code", remoteErr.Code, "message", remoteErr.Message)
		// The session remains connected unless the transport itself
		// also fails.
		if s.cfg.OnRemoteError != nil && !s.stale(gen) {
			s.cfg.OnRemoteError(remoteErr)
		}

	case realtime.EventTypeInputAudioBufferSpeechStarted:
		s.transition(gen, StateListening, StateConnected)

	case realtime.EventTypeInputAudioBufferSpeechStopped:
		s.transition(gen, StateConnected, StateListening)

	case realtime.EventTypeInputAudioTranscriptionCompleted:
		s.admit(gen, event.FinalText(), SpeakerUser)
		s.transition(gen, StateListening, StateConnected)

	case realtime.EventTypeResponseAudioDelta:
		if len(event.Audio) > 0 {
			s.playAudio(gen, event.Audio)
		}
		s.transition(gen, StateSpeaking, StateConnected, StateListening)

	case realtime.EventTypeResponseAudioTranscriptDelta,
		realtime.EventTypeResponseTextDelta,
		realtime.EventTypeResponseOutputTextDelta:
		if s.cfg.OnRemoteDelta != nil && !s.stale(gen) {
			s.cfg.OnRemoteDelta(event.DeltaText())
		}

	case realtime.EventTypeResponseAudioTranscriptDone,
		realtime.EventTypeResponseTextDone,
		realtime.EventTypeResponseOutputTextDone:
		s.admit(gen, event.FinalText(), SpeakerRemote)
		s.transition(gen, StateListening, StateConnected, StateSpeaking)

	default:
		s.log.Debug("ignoring event", "type", event.Type)
	}
}

// transition moves the state machine to a new state when the current
// state is one of from, and reports whether it did.
func (s *Session) transition(gen int, to State, from ...State) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}
	ok := false
	for _, f := range from {
		if s.state == f {
			ok = true
			break
		}
	}
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.state = to
	s.mu.Unlock()

	s.log.Debug("state changed", "state", to)
	s.notifyState(to)
	return true
}

// admit runs one utterance through the transcript aggregator.
func (s *Session) admit(gen int, text string, speaker Speaker) {
	if text == "" {
		return
	}
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	transcript := s.transcript
	s.mu.Unlock()

	entry, admitted := transcript.Admit(text, speaker, time.Now())
	if !admitted {
		return
	}
	s.log.Debug("transcript entry", "speaker", speaker, "chars", len(text))
	if s.cfg.OnEntry != nil {
		s.cfg.OnEntry(entry)
	}
}

// transportConnected completes the connecting phase.
func (s *Session) transportConnected(gen int) {
	s.mu.Lock()
	if gen != s.generation || s.state != StateConnecting {
		s.mu.Unlock()
		return
	}
	s.state = StateConnected
	close(s.connected)
	s.mu.Unlock()

	s.log.Info("session connected")
	s.notifyState(StateConnected)
}

// transportLost records an asynchronous post-establishment transport
// failure. No automatic reconnect is attempted.
func (s *Session) transportLost(gen int, reason string) {
	s.mu.Lock()
	if gen != s.generation || !s.state.Active() {
		s.mu.Unlock()
		return
	}
	s.state = StateError
	s.cause = fmt.Errorf("%w: %s", ErrTransportLost, reason)
	transport := s.transport
	s.transport = nil
	s.mu.Unlock()

	s.log.Error("transport lost", "reason", reason)
	if transport != nil {
		transport.Close()
	}
	s.notifyState(StateError)
}

// failStart aborts an in-progress start, closing whatever was opened
// on the failing path. A stop that raced the failure wins and the
// failure is discarded.
func (s *Session) failStart(gen int, err error) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil
	}
	transport := s.transport
	s.transport = nil
	s.state = StateError
	s.cause = err
	s.mu.Unlock()

	s.log.Error("session start failed", "error", err)
	if transport != nil {
		transport.CloseChannel()
		transport.Close()
	}
	s.notifyState(StateError)
	return err
}

func (s *Session) stale(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.generation
}

func (s *Session) notifyState(state State) {
	if s.cfg.OnState != nil {
		s.cfg.OnState(state)
	}
}
