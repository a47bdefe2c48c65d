package deepgram

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/tripper/core/audio"
	"github.com/koscakluka/tripper/core/texttospeech"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const (
	scopeName = "github.com/koscakluka/tripper/core/texttospeech/deepgram"

	defaultSampleRate = 24000
)

var (
	tracer = otel.Tracer(scopeName)
	logger = otelslog.NewLogger(scopeName)

	defaultURL = url.URL{Scheme: "wss", Host: "api.deepgram.com", Path: "/v1/speak"}
)

// TextToSpeechClient synthesizes whole utterances over Deepgram's speak
// websocket. Each call opens its own connection so the client is safe for
// concurrent use.
type TextToSpeechClient struct {
	apiKey  string
	url     url.URL
	dialer  *websocket.Dialer
	options texttospeech.TextToSpeechOptions
}

type ClientOption func(*TextToSpeechClient)

// WithURL overrides the speak endpoint, mostly useful for tests.
func WithURL(u url.URL) ClientOption {
	return func(c *TextToSpeechClient) {
		c.url = u
	}
}

func WithOptions(opts ...texttospeech.TextToSpeechOption) ClientOption {
	return func(c *TextToSpeechClient) {
		for _, opt := range opts {
			opt(&c.options)
		}
	}
}

func NewTextToSpeechClient(apiKey string, opts ...ClientOption) (*TextToSpeechClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not set")
	}

	voices := make(map[string]string, len(languageVoices))
	for code, voice := range languageVoices {
		voices[code] = string(voice)
	}

	client := &TextToSpeechClient{
		apiKey: apiKey,
		url:    defaultURL,
		dialer: websocket.DefaultDialer,
		options: texttospeech.TextToSpeechOptions{
			EncodingInfo: audio.EncodingInfo{SampleRate: defaultSampleRate, Format: audio.EncodingLinear16, Channels: 1},
			Voices:       voices,
			DefaultVoice: string(defaultVoice),
		},
	}
	for _, opt := range opts {
		opt(client)
	}

	if !slices.Contains(GetAvailableVoices(), deepgramVoice(client.options.DefaultVoice)) {
		return nil, fmt.Errorf("invalid voice %q", client.options.DefaultVoice)
	}
	for code, voice := range client.options.Voices {
		if !slices.Contains(GetAvailableVoices(), deepgramVoice(voice)) {
			return nil, fmt.Errorf("invalid voice %q for language %q", voice, code)
		}
	}

	return client, nil
}
