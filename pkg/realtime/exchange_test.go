package realtime

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

const (
	testOfferSDP  = "v=0\r\no=- 1 1 IN IP4 0.0.0.0\r\ns=-\r\n"
	testAnswerSDP = "v=0\r\no=- 2 2 IN IP4 0.0.0.0\r\ns=-\r\n"
)

func testCredential() *Credential {
	return &Credential{Secret: "ek_test_123"}
}

func TestHTTPExchanger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/sdp" {
			t.Errorf("content type = %s, want application/sdp", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer ek_test_123" {
			t.Errorf("authorization = %s", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != testOfferSDP {
			t.Errorf("offer body = %q", body)
		}
		w.Write([]byte(testAnswerSDP))
	}))
	defer server.Close()

	ex := &HTTPExchanger{URL: server.URL}
	answer, err := ex.Exchange(context.Background(), testCredential(), testOfferSDP)
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if answer != testAnswerSDP {
		t.Errorf("answer = %q", answer)
	}
}

func TestHTTPExchangerRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad offer", http.StatusBadRequest)
	}))
	defer server.Close()

	ex := &HTTPExchanger{URL: server.URL}
	_, err := ex.Exchange(context.Background(), testCredential(), testOfferSDP)
	if !IsCode(err, CodeSignalingFailure) {
		t.Fatalf("error = %v, want signaling_failure", err)
	}
}

func TestSocketExchanger(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer ek_test_123" {
			t.Errorf("authorization = %s", auth)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var msg signalMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("read offer: %v", err)
			return
		}
		if msg.Type != "offer" || msg.SDP != testOfferSDP {
			t.Errorf("offer frame = %+v", msg)
		}

		// Unrelated traffic before the answer must be ignored.
		conn.WriteJSON(signalMessage{Type: "candidate"})
		conn.WriteJSON(signalMessage{Type: "answer", SDP: testAnswerSDP})
	}))
	defer server.Close()

	ex := &SocketExchanger{URL: "ws" + strings.TrimPrefix(server.URL, "http")}
	answer, err := ex.Exchange(context.Background(), testCredential(), testOfferSDP)
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if answer != testAnswerSDP {
		t.Errorf("answer = %q", answer)
	}
}

func TestSocketExchangerError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg signalMessage
		conn.ReadJSON(&msg)
		conn.WriteJSON(signalMessage{Type: "error", Message: "no session"})
	}))
	defer server.Close()

	ex := &SocketExchanger{URL: "ws" + strings.TrimPrefix(server.URL, "http")}
	_, err := ex.Exchange(context.Background(), testCredential(), testOfferSDP)
	if !IsCode(err, CodeSignalingFailure) {
		t.Fatalf("error = %v, want signaling_failure", err)
	}
}
