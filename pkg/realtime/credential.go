package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/praxislabs/vocalis/pkg/jsontime"
)

// SessionKind distinguishes a generic assistant conversation from a
// structured clinical simulation.
type SessionKind string

const (
	KindAssistant  SessionKind = "assistant"
	KindSimulation SessionKind = "simulation"
)

// SessionContext identifies the session being started to the
// credential endpoint.
type SessionContext struct {
	ClientID   string      `json:"clientId"`
	ScenarioID string      `json:"scenarioId,omitempty"`
	Kind       SessionKind `json:"sessionKind"`
}

// AudioFormat describes the audio the credential authorizes.
type AudioFormat struct {
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
	Encoding   string `json:"encoding"`
}

// DefaultAudioFormat is used when the credential endpoint does not
// declare one.
var DefaultAudioFormat = AudioFormat{SampleRate: 24000, Channels: 1, Encoding: AudioFormatPCM16}

// Credential is the short-lived authorization bundle issued per
// session start. It is read-only after issuance and must not be
// reused past ExpiresAt.
type Credential struct {
	Secret       string         `json:"secret"`
	Instructions string         `json:"instructions"`
	Kind         SessionKind    `json:"sessionKind"`
	ExpiresAt    jsontime.Milli `json:"expiresAt"`
	Audio        AudioFormat    `json:"audio"`
}

// Expired reports whether the credential may no longer be used.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt.Time())
}

// Broker obtains session credentials from a trusted server-side
// authority. It performs no retries and no caching; each session start
// requests a fresh credential.
type Broker struct {
	endpoint   string
	httpClient *http.Client
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithBrokerHTTPClient sets a custom HTTP client.
func WithBrokerHTTPClient(client *http.Client) BrokerOption {
	return func(b *Broker) {
		b.httpClient = client
	}
}

// NewBroker creates a Broker for the given credential endpoint URL.
func NewBroker(endpoint string, opts ...BrokerOption) *Broker {
	b := &Broker{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// credentialErrorBody is the JSON error shape the credential endpoint
// returns on failure.
type credentialErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Request obtains a credential for one session. The endpoint being
// unreachable or returning a non-success status yields an auth_failure
// Error; a server-reported missing issuing key yields
// configuration_failure.
func (b *Broker) Request(ctx context.Context, sc SessionContext) (*Credential, error) {
	body, err := json.Marshal(sc)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			Code:    CodeAuthFailure,
			Message: fmt.Sprintf("credential endpoint unreachable: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		var errBody credentialErrorBody
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error.Code == "no_issuing_key" {
			return nil, &Error{
				Code:       CodeConfigurationFailure,
				Message:    "credential endpoint has no issuing key configured",
				HTTPStatus: resp.StatusCode,
			}
		}
		return nil, &Error{
			Code:       CodeAuthFailure,
			Message:    fmt.Sprintf("credential request rejected: %s", string(raw)),
			HTTPStatus: resp.StatusCode,
		}
	}

	var cred Credential
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return nil, &Error{
			Code:    CodeAuthFailure,
			Message: fmt.Sprintf("invalid credential response: %v", err),
		}
	}
	if cred.Secret == "" {
		return nil, &Error{
			Code:    CodeAuthFailure,
			Message: "credential response missing secret",
		}
	}
	if cred.Audio == (AudioFormat{}) {
		cred.Audio = DefaultAudioFormat
	}
	return &cred, nil
}
