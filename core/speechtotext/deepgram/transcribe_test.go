package deepgram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/tripper/core/audio"
	"github.com/koscakluka/tripper/core/speechtotext"
)

type listenServer struct {
	*httptest.Server
	receivedBytes atomic.Int64
	query         atomic.Value
}

func newListenServer(t *testing.T, results []string) *listenServer {
	t.Helper()
	s := &listenServer{}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.query.Store(r.URL.Query())
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType == websocket.BinaryMessage {
				s.receivedBytes.Add(int64(len(msg)))
				continue
			}

			// CloseStream
			for _, result := range results {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(result))
			}
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Metadata","request_id":"abc"}`))
			return
		}
	}))
	return s
}

func (s *listenServer) wsURL() url.URL {
	u, _ := url.Parse(s.URL)
	u.Scheme = "ws"
	return *u
}

func TestTranscribeJoinsFinalResults(t *testing.T) {
	server := newListenServer(t, []string{
		`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"plan a"}]}}`,
		`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"Plan a trip"}]}}`,
		`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"to Kyoto."}]}}`,
	})
	defer server.Close()

	client, err := NewTranscriptionClient("test-key", WithURL(server.wsURL()))
	if err != nil {
		t.Fatalf("expected client to be created, got %v", err)
	}

	pcm := make([]byte, 20000)
	wav, err := audio.EncodeWAV(pcm, audio.GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("failed to build wav: %v", err)
	}

	transcript, err := client.Transcribe(context.Background(), wav, "en")
	if err != nil {
		t.Fatalf("expected transcription to succeed, got %v", err)
	}
	if transcript != "Plan a trip to Kyoto." {
		t.Fatalf("unexpected transcript %q", transcript)
	}
	if got := server.receivedBytes.Load(); got != int64(len(pcm)) {
		t.Fatalf("expected raw samples without wav header (%d bytes), got %d", len(pcm), got)
	}
	query := server.query.Load().(url.Values)
	if query.Get("encoding") != "linear16" || query.Get("sample_rate") != "16000" || query.Get("language") != "en" {
		t.Fatalf("unexpected query parameters: %v", query)
	}
}

func TestTranscribeWithoutSpeechIsUnintelligible(t *testing.T) {
	server := newListenServer(t, []string{
		`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":""}]}}`,
	})
	defer server.Close()

	client, _ := NewTranscriptionClient("test-key", WithURL(server.wsURL()))
	_, err := client.Transcribe(context.Background(), []byte("OggS-container-bytes"), "")
	if !errors.Is(err, speechtotext.ErrUnintelligible) {
		t.Fatalf("expected ErrUnintelligible, got %v", err)
	}
	if got := speechtotext.UserMessage(err); got != "Cannot read voice" {
		t.Fatalf("unexpected user message %q", got)
	}
}

func TestTranscribeStreamErrorIsUnavailable(t *testing.T) {
	server := newListenServer(t, []string{
		`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"Plan a trip"}]}}`,
		`{"type":"Error","description":"request timed out"}`,
	})
	defer server.Close()

	client, _ := NewTranscriptionClient("test-key", WithURL(server.wsURL()))
	_, err := client.Transcribe(context.Background(), []byte("OggS-container-bytes"), "en")
	if !errors.Is(err, speechtotext.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "request timed out") {
		t.Fatalf("expected deepgram description in error, got %v", err)
	}
}

func TestTranscribeUnreachableServiceIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	u.Scheme = "ws"
	client, _ := NewTranscriptionClient("test-key", WithURL(*u))

	_, err := client.Transcribe(context.Background(), []byte{1, 2, 3}, "en")
	if !errors.Is(err, speechtotext.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := speechtotext.UserMessage(err); got != "Not available" {
		t.Fatalf("unexpected user message %q", got)
	}
}
