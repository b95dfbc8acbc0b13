package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// OfferExchanger carries the offer/answer exchange with the remote
// endpoint. The negotiator is agnostic to which transport performs it:
// a direct HTTPS POST or a signaling socket are equally valid.
type OfferExchanger interface {
	// Exchange sends the local offer SDP and returns the remote
	// answer SDP, authorized by the credential.
	Exchange(ctx context.Context, cred *Credential, offerSDP string) (string, error)
}

// HTTPExchanger POSTs the raw offer SDP directly to the remote speech
// endpoint and reads the answer SDP from the response body. This is
// the production exchange path.
type HTTPExchanger struct {
	// URL is the speech endpoint accepting application/sdp offers.
	URL string

	// HTTPClient overrides http.DefaultClient when set.
	HTTPClient *http.Client
}

func (e *HTTPExchanger) Exchange(ctx context.Context, cred *Credential, offerSDP string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, strings.NewReader(offerSDP))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+cred.Secret)
	req.Header.Set("Content-Type", "application/sdp")

	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{
			Code:    CodeSignalingFailure,
			Message: fmt.Sprintf("offer exchange failed: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", &Error{
			Code:       CodeSignalingFailure,
			Message:    fmt.Sprintf("offer rejected: %s", string(body)),
			HTTPStatus: resp.StatusCode,
		}
	}

	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{
			Code:    CodeSignalingFailure,
			Message: fmt.Sprintf("reading answer: %v", err),
		}
	}
	return string(answer), nil
}

// signalMessage is one frame on the signaling socket.
type signalMessage struct {
	Type    string `json:"type"`
	SDP     string `json:"sdp,omitempty"`
	Message string `json:"message,omitempty"`
}

// SocketExchanger runs the offer/answer exchange over a signaling
// WebSocket: it sends {"type":"offer","sdp":...} and waits for the
// matching {"type":"answer","sdp":...} frame, ignoring unrelated
// frame types.
type SocketExchanger struct {
	// URL is the signaling socket endpoint (ws:// or wss://).
	URL string

	// Dialer overrides websocket.DefaultDialer when set.
	Dialer *websocket.Dialer
}

func (e *SocketExchanger) Exchange(ctx context.Context, cred *Credential, offerSDP string) (string, error) {
	dialer := e.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+cred.Secret)

	conn, resp, err := dialer.DialContext(ctx, e.URL, headers)
	if err != nil {
		msg := fmt.Sprintf("signaling dial failed: %v", err)
		if resp != nil {
			return "", &Error{Code: CodeSignalingFailure, Message: msg, HTTPStatus: resp.StatusCode}
		}
		return "", &Error{Code: CodeSignalingFailure, Message: msg}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteJSON(signalMessage{Type: "offer", SDP: offerSDP}); err != nil {
		return "", &Error{
			Code:    CodeSignalingFailure,
			Message: fmt.Sprintf("sending offer: %v", err),
		}
	}

	for {
		var msg signalMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return "", &Error{
				Code:    CodeSignalingFailure,
				Message: fmt.Sprintf("awaiting answer: %v", err),
			}
		}
		switch msg.Type {
		case "answer":
			if msg.SDP == "" {
				return "", &Error{Code: CodeSignalingFailure, Message: "answer frame missing sdp"}
			}
			return msg.SDP, nil
		case "error":
			return "", &Error{Code: CodeSignalingFailure, Message: msg.Message}
		default:
			// Unrelated signaling traffic; keep waiting.
		}
	}
}
