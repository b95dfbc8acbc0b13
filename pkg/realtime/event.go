package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Client event types (sent to the remote endpoint).
const (
	EventTypeSessionUpdate = "session.update"

	EventTypeInputAudioBufferAppend = "input_audio_buffer.append"
	EventTypeInputAudioBufferCommit = "input_audio_buffer.commit"
	EventTypeInputAudioBufferClear  = "input_audio_buffer.clear"

	EventTypeConversationItemCreate = "conversation.item.create"

	EventTypeResponseCreate = "response.create"
	EventTypeResponseCancel = "response.cancel"
)

// Server event types (received from the remote endpoint).
const (
	EventTypeError = "error"

	EventTypeSessionCreated = "session.created"
	EventTypeSessionUpdated = "session.updated"

	EventTypeInputAudioBufferCommitted     = "input_audio_buffer.committed"
	EventTypeInputAudioBufferCleared       = "input_audio_buffer.cleared"
	EventTypeInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	EventTypeInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"

	EventTypeInputAudioTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventTypeInputAudioTranscriptionFailed    = "conversation.item.input_audio_transcription.failed"

	EventTypeResponseCreated = "response.created"
	EventTypeResponseDone    = "response.done"

	EventTypeResponseAudioDelta = "response.audio.delta"
	EventTypeResponseAudioDone  = "response.audio.done"

	// The remote reply text surfaces through one of three dialects
	// depending on the endpoint revision; all are part of the
	// taxonomy and treated identically downstream.
	EventTypeResponseTextDelta            = "response.text.delta"
	EventTypeResponseTextDone             = "response.text.done"
	EventTypeResponseOutputTextDelta      = "response.output_text.delta"
	EventTypeResponseOutputTextDone       = "response.output_text.done"
	EventTypeResponseAudioTranscriptDelta = "response.audio_transcript.delta"
	EventTypeResponseAudioTranscriptDone  = "response.audio_transcript.done"
)

// SessionInfo is the remote session resource carried on
// session.created and session.updated events.
type SessionInfo struct {
	ID    string `json:"id,omitempty"`
	Model string `json:"model,omitempty"`
	Voice string `json:"voice,omitempty"`
}

// ServerEvent is the envelope for one protocol event received over the
// control channel. Events are immutable once parsed.
type ServerEvent struct {
	// Type is the event type discriminator.
	Type string `json:"type"`

	// EventID is the unique identifier for this event.
	EventID string `json:"event_id,omitempty"`

	// Session carries session info for session.created / updated.
	Session *SessionInfo `json:"session,omitempty"`

	// ItemID is the conversation item this event refers to.
	ItemID string `json:"item_id,omitempty"`

	// AudioStartMs / AudioEndMs bound the detected speech segment for
	// speech_started / speech_stopped events.
	AudioStartMs int `json:"audio_start_ms,omitempty"`
	AudioEndMs   int `json:"audio_end_ms,omitempty"`

	// Transcript is the finalized transcription text for
	// input_audio_transcription.completed and audio_transcript.done.
	Transcript string `json:"transcript,omitempty"`

	// Text is the finalized reply text for response.text.done and
	// response.output_text.done.
	Text string `json:"text,omitempty"`

	// Delta is the incremental text for *.delta events. For
	// response.audio.delta it carries base64 audio instead.
	Delta string `json:"delta,omitempty"`

	// ErrorInfo carries details for error-type events.
	ErrorInfo *EventError `json:"error,omitempty"`

	// Audio is the decoded audio payload of response.audio.delta.
	// Populated after parsing, never serialized.
	Audio []byte `json:"-"`

	// Raw is the original JSON message.
	Raw []byte `json:"-"`
}

// FinalText returns the finalized text carried by a remote-transcript
// final event, regardless of dialect.
func (e *ServerEvent) FinalText() string {
	if e.Transcript != "" {
		return e.Transcript
	}
	return e.Text
}

// DeltaText returns the incremental text carried by a remote-transcript
// delta event.
func (e *ServerEvent) DeltaText() string {
	return e.Delta
}

// ParseServerEvent parses one control-channel frame into a ServerEvent.
//
// A JSON parse failure is returned as an error; the caller is expected
// to log and discard the frame without terminating the channel. An
// unrecognized Type parses successfully and is ignored downstream, so
// the taxonomy can evolve without breaking older clients.
func ParseServerEvent(message []byte) (*ServerEvent, error) {
	var event ServerEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return nil, fmt.Errorf("realtime: malformed event: %w", err)
	}
	event.Raw = message

	// For audio deltas the "delta" field holds base64 audio.
	if event.Type == EventTypeResponseAudioDelta && event.Delta != "" {
		if decoded, err := base64.StdEncoding.DecodeString(event.Delta); err == nil {
			event.Audio = decoded
		}
	}

	return &event, nil
}
