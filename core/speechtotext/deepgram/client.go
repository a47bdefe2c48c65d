package deepgram

import (
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const (
	scopeName = "github.com/koscakluka/tripper/core/speechtotext/deepgram"

	DefaultModel = "nova-2"
)

var (
	tracer = otel.Tracer(scopeName)
	logger = otelslog.NewLogger(scopeName)

	defaultURL = url.URL{Scheme: "wss", Host: "api.deepgram.com", Path: "/v1/listen"}
)

// TranscriptionClient transcribes recorded utterances through Deepgram's
// live listen websocket. Each call uses its own connection.
type TranscriptionClient struct {
	apiKey string
	model  string
	url    url.URL
	dialer *websocket.Dialer

	// chunkSize is the largest binary frame sent to Deepgram
	chunkSize int
}

type ClientOption func(*TranscriptionClient)

func WithModel(model string) ClientOption {
	return func(c *TranscriptionClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithURL overrides the listen endpoint, mostly useful for tests.
func WithURL(u url.URL) ClientOption {
	return func(c *TranscriptionClient) {
		c.url = u
	}
}

func NewTranscriptionClient(apiKey string, opts ...ClientOption) (*TranscriptionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not set")
	}

	client := &TranscriptionClient{
		apiKey:    apiKey,
		model:     DefaultModel,
		url:       defaultURL,
		dialer:    websocket.DefaultDialer,
		chunkSize: 8 * 1024,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}
