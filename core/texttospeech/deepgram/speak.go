package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/tripper/core/audio"
	"github.com/koscakluka/tripper/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// maxSpeakLength is the largest text accepted by a single Speak message.
const maxSpeakLength = 2000

// Synthesize speaks text with the voice configured for languageCode and
// returns the audio as a WAV artifact.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string, languageCode string) (texttospeech.Audio, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return texttospeech.Audio{}, texttospeech.ErrEmptyText
	}

	voice, matched := c.options.Voice(languageCode)
	if !matched {
		logger.WarnContext(ctx, "no voice for language, using default", "language", languageCode, "voice", voice)
	}
	span.SetAttributes(
		attribute.String("request.voice", voice),
		attribute.String("request.language", languageCode),
		attribute.Int("request.text_length", len(text)),
	)

	pcm, err := c.speak(ctx, voice, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return texttospeech.Audio{}, err
	}
	span.SetAttributes(attribute.Int("response.audio_bytes", len(pcm)))

	wav, err := audio.EncodeWAV(pcm, c.options.EncodingInfo)
	if err != nil {
		span.RecordError(err)
		return texttospeech.Audio{}, fmt.Errorf("failed to encode wav: %w", err)
	}

	return texttospeech.Audio{
		Data:         wav,
		ContentType:  "audio/wav",
		Extension:    ".wav",
		EncodingInfo: c.options.EncodingInfo,
	}, nil
}

func (c *TextToSpeechClient) speak(ctx context.Context, voice string, text string) ([]byte, error) {
	ws, err := c.connectWebsocket(ctx, voice)
	if err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	for _, segment := range splitText(text, maxSpeakLength) {
		if err := ws.WriteJSON(speakMessage{Type: "Speak", Text: segment}); err != nil {
			return nil, fmt.Errorf("failed to send text to deepgram through websocket: %w", err)
		}
	}
	if err := ws.WriteJSON(flushMsg); err != nil {
		return nil, fmt.Errorf("failed to flush deepgram buffer through websocket: %w", err)
	}

	var pcm []byte
	for {
		msgType, msg, err := ws.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("websocket read error: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			pcm = append(pcm, msg...)
		case websocket.TextMessage:
			var parsedMsg controlMessage
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.DebugContext(ctx, "failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				if err := ws.WriteJSON(closeMsg); err != nil {
					logger.DebugContext(ctx, "failed to send close message to deepgram websocket", "error", err)
				}
				if len(pcm) == 0 {
					return nil, errors.New("deepgram returned no audio")
				}
				return pcm, nil
			case "Warning":
				logger.WarnContext(ctx, "deepgram warning", "description", parsedMsg.Description)
			case "Error":
				return nil, fmt.Errorf("deepgram error: %s", parsedMsg.Description)
			}
		}
	}
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context, voice string) (*websocket.Conn, error) {
	encodingInfo := c.options.EncodingInfo

	u := c.url
	query := u.Query()
	query.Set("encoding", encodingInfo.Format.Name())
	query.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	query.Set("model", voice)
	u.RawQuery = query.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, u.String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open socket connection to deepgram (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

// splitText breaks text into pieces of at most limit bytes, preferring
// sentence ends and then whitespace as break points.
func splitText(text string, limit int) []string {
	var segments []string
	for len(text) > limit {
		cut := strings.LastIndexAny(text[:limit], ".!?。！？\n")
		if cut > 0 {
			_, size := utf8.DecodeRuneInString(text[cut:])
			cut += size
		} else if cut = strings.LastIndexAny(text[:limit], " \t"); cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}

		if segment := strings.TrimSpace(text[:cut]); segment != "" {
			segments = append(segments, segment)
		}
		text = text[cut:]
	}
	if segment := strings.TrimSpace(text); segment != "" {
		segments = append(segments, segment)
	}
	return segments
}

type speakMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type websocketMessage struct {
	Type string `json:"type"`
}

type controlMessage struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)
