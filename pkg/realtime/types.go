package realtime

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// Audio formats accepted by the remote endpoint.
const (
	// AudioFormatPCM16 is 16-bit PCM at 24 kHz, mono, little-endian.
	AudioFormatPCM16 = "pcm16"
	// AudioFormatG711ULaw is G.711 u-law at 8 kHz.
	AudioFormatG711ULaw = "g711_ulaw"
	// AudioFormatG711ALaw is G.711 A-law at 8 kHz.
	AudioFormatG711ALaw = "g711_alaw"
)

// Voice options for audio output.
const (
	VoiceAlloy   = "alloy"
	VoiceAsh     = "ash"
	VoiceCoral   = "coral"
	VoiceEcho    = "echo"
	VoiceSage    = "sage"
	VoiceShimmer = "shimmer"
	VoiceVerse   = "verse"
)

// VAD modes for turn detection.
const (
	VADServerVAD   = "server_vad"
	VADSemanticVAD = "semantic_vad"
)

// DefaultTranscriptionModel is the input transcription model selected
// when the caller does not override it.
const DefaultTranscriptionModel = "whisper-1"

// SessionConfig is the session-scoped configuration pushed to the
// remote endpoint in the session control message sent on channel open.
type SessionConfig struct {
	// Modalities specifies the output modalities.
	Modalities []string `json:"modalities,omitempty"`

	// Instructions is the behavior directive for the session.
	Instructions string `json:"instructions,omitempty"`

	// Voice is the voice ID for audio output.
	Voice string `json:"voice,omitempty"`

	// InputAudioFormat / OutputAudioFormat declare the audio formats.
	InputAudioFormat  string `json:"input_audio_format,omitempty"`
	OutputAudioFormat string `json:"output_audio_format,omitempty"`

	// InputAudioTranscription selects the transcription model for
	// user audio. Required for user-transcript events to arrive.
	InputAudioTranscription *TranscriptionConfig `json:"input_audio_transcription,omitempty"`

	// TurnDetection configures voice-activity detection.
	TurnDetection *TurnDetection `json:"turn_detection,omitempty"`
}

// TranscriptionConfig selects the input transcription model.
type TranscriptionConfig struct {
	Model string `json:"model,omitempty"`
}

// TurnDetection is the voice-activity-detection policy: sensitivity
// threshold plus the trailing-silence duration that ends a turn.
type TurnDetection struct {
	Type              string  `json:"type,omitempty"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
}

// DefaultTurnDetection returns the standard server-side VAD policy.
func DefaultTurnDetection() *TurnDetection {
	return &TurnDetection{
		Type:              VADServerVAD,
		Threshold:         0.5,
		PrefixPaddingMs:   300,
		SilenceDurationMs: 500,
	}
}

// NewEventID generates a unique client event ID.
func NewEventID() string {
	return "evt_" + uuid.New().String()[:12]
}

// SessionUpdateEvent builds the session control message.
func SessionUpdateEvent(cfg *SessionConfig) map[string]any {
	return map[string]any{
		"event_id": NewEventID(),
		"type":     EventTypeSessionUpdate,
		"session":  cfg,
	}
}

// AppendAudioEvent builds an input-audio-buffer append message from
// raw PCM bytes.
func AppendAudioEvent(audio []byte) map[string]any {
	return map[string]any{
		"event_id": NewEventID(),
		"type":     EventTypeInputAudioBufferAppend,
		"audio":    base64.StdEncoding.EncodeToString(audio),
	}
}

// CommitInputEvent builds an input-audio-buffer commit message.
func CommitInputEvent() map[string]any {
	return map[string]any{
		"event_id": NewEventID(),
		"type":     EventTypeInputAudioBufferCommit,
	}
}

// UserTextEvent builds a user text conversation item.
func UserTextEvent(text string) map[string]any {
	return map[string]any{
		"event_id": NewEventID(),
		"type":     EventTypeConversationItemCreate,
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	}
}

// ResponseCreateEvent asks the remote endpoint to generate a response.
func ResponseCreateEvent() map[string]any {
	return map[string]any{
		"event_id": NewEventID(),
		"type":     EventTypeResponseCreate,
	}
}
