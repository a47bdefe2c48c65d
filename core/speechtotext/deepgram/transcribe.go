package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/tripper/core/audio"
	"github.com/koscakluka/tripper/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Transcribe sends the whole recording and waits for Deepgram to finish
// processing it. WAV input is unwrapped and sent as raw samples, anything
// else is passed through for Deepgram to detect the container.
func (c *TranscriptionClient) Transcribe(ctx context.Context, recording []byte, language string) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.String("request.language", language),
		attribute.Int("request.audio_bytes", len(recording)),
	)

	if len(recording) == 0 {
		span.RecordError(speechtotext.ErrUnintelligible)
		return "", speechtotext.ErrUnintelligible
	}

	options := connectionOptions{model: c.model, language: language}
	payload := recording
	if audio.IsWAV(recording) {
		pcm, info, err := audio.DecodeWAV(recording)
		if err != nil {
			err = fmt.Errorf("%w: %v", speechtotext.ErrUnintelligible, err)
			span.RecordError(err)
			return "", err
		}
		params, err := encodingParams(info)
		if err != nil {
			err = fmt.Errorf("%w: invalid encoding: %v", speechtotext.ErrUnintelligible, err)
			span.RecordError(err)
			return "", err
		}
		options.encoding = params
		payload = pcm
	}

	conn, err := c.connectWebsocket(ctx, options)
	if err != nil {
		err = fmt.Errorf("%w: %v", speechtotext.ErrUnavailable, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	sendErr := make(chan error, 1)
	go func() {
		sendErr <- c.sendAudio(conn, payload)
	}()

	transcript, err := readTranscript(ctx, conn)
	_ = conn.Close()
	if sendFailure := <-sendErr; sendFailure != nil && err == nil && transcript == "" {
		err = fmt.Errorf("%w: %v", speechtotext.ErrUnavailable, sendFailure)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if transcript == "" {
		span.RecordError(speechtotext.ErrUnintelligible)
		return "", speechtotext.ErrUnintelligible
	}
	span.SetAttributes(attribute.Int("response.transcript_length", len(transcript)))
	return transcript, nil
}

func (c *TranscriptionClient) sendAudio(conn *websocket.Conn, payload []byte) error {
	for offset := 0; offset < len(payload); offset += c.chunkSize {
		chunk := payload[offset:min(offset+c.chunkSize, len(payload))]
		if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			return fmt.Errorf("failed to write to deepgram client: %w", err)
		}
	}

	if err := conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream through websocket: %w", err)
	}
	return nil
}

// errorMessageType is the type of the message Deepgram sends before closing
// a failed stream.
const errorMessageType = "Error"

// readTranscript joins all final results until Deepgram reports the stream
// metadata or closes the connection.
func readTranscript(ctx context.Context, conn *websocket.Conn) (string, error) {
	var segments []string
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return strings.Join(segments, " "), nil
			}
			if len(segments) > 0 {
				logger.WarnContext(ctx, "deepgram connection dropped after partial transcript", "error", err)
				return strings.Join(segments, " "), nil
			}
			return "", fmt.Errorf("%w: failed to read deepgram websocket message: %v", speechtotext.ErrUnavailable, err)
		}
		if msgType == websocket.BinaryMessage {
			continue
		}

		var parsedMsg struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(msg, &parsedMsg); err != nil {
			logger.DebugContext(ctx, "failed to unmarshal deepgram message", "error", err)
			continue
		}

		if parsedMsg.Type == errorMessageType {
			return "", fmt.Errorf("%w: %s", speechtotext.ErrUnavailable, parsedMsg.Description)
		}

		switch api.TypeResponse(parsedMsg.Type) {
		case api.TypeMessageResponse:
			var msgResp api.MessageResponse
			if err := json.Unmarshal(msg, &msgResp); err != nil {
				logger.DebugContext(ctx, "failed to unmarshal deepgram results", "error", err)
				continue
			}
			if !msgResp.IsFinal || len(msgResp.Channel.Alternatives) == 0 {
				continue
			}
			if transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript); transcript != "" {
				segments = append(segments, transcript)
			}
		case api.TypeMetadataResponse:
			return strings.Join(segments, " "), nil
		}
	}
}

type connectionOptions struct {
	model    string
	language string
	// encoding is empty for containerized audio
	encoding url.Values
}

func (c *TranscriptionClient) connectWebsocket(ctx context.Context, options connectionOptions) (*websocket.Conn, error) {
	listenURL := c.url
	queryParams := listenURL.Query()
	queryParams.Set("model", options.model)
	queryParams.Set("smart_format", "true")
	queryParams.Set("punctuate", "true")
	if options.language != "" {
		queryParams.Set("language", options.language)
	}
	for key, values := range options.encoding {
		queryParams[key] = values
	}
	listenURL.RawQuery = queryParams.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open socket connection to deepgram (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

var _ speechtotext.Transcriber = (*TranscriptionClient)(nil)
