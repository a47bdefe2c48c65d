package google

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/koscakluka/tripper/core/audio"
	"github.com/koscakluka/tripper/core/speechtotext"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var tracer = otel.Tracer("github.com/koscakluka/tripper/core/speechtotext/google")

type recognizeFunc func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// GoogleSpeech transcribes recordings with Cloud Speech-to-Text synchronous
// recognition.
type GoogleSpeech struct {
	c         *speech.Client
	recognize recognizeFunc

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
}

// NewGoogleSpeech uses application default credentials.
func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speechtotext.ErrUnavailable, err)
	}
	return &GoogleSpeech{
		c: c,
		recognize: func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return c.Recognize(ctx, req)
		},
		Encoding:     speechpb.RecognitionConfig_LINEAR16,
		SampleRateHz: audio.DefaultSampleRate,
	}, nil
}

func (g *GoogleSpeech) Close() error {
	if g.c == nil {
		return nil
	}
	return g.c.Close()
}

// Transcribe returns the most confident alternative of each result joined
// together. WAV headers are read to configure the recognizer, other input is
// assumed to be raw samples in the configured encoding.
func (g *GoogleSpeech) Transcribe(ctx context.Context, recording []byte, language string) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe speech")
	defer span.End()

	languageTag := speechtotext.LanguageTag(language)
	span.SetAttributes(
		attribute.String("request.language", languageTag),
		attribute.Int("request.audio_bytes", len(recording)),
	)

	if len(recording) == 0 {
		return "", speechtotext.ErrUnintelligible
	}

	config := &speechpb.RecognitionConfig{
		Encoding:                   g.Encoding,
		SampleRateHertz:            g.SampleRateHz,
		LanguageCode:               languageTag,
		EnableAutomaticPunctuation: true,
	}
	content := recording
	if audio.IsWAV(recording) {
		pcm, info, err := audio.DecodeWAV(recording)
		if err != nil {
			return "", fmt.Errorf("%w: %v", speechtotext.ErrUnintelligible, err)
		}
		config.SampleRateHertz = int32(info.SampleRate)
		config.AudioChannelCount = int32(info.ChannelCount())
		switch info.Format {
		case audio.EncodingMulaw:
			config.Encoding = speechpb.RecognitionConfig_MULAW
		case audio.EncodingLinear16:
			config.Encoding = speechpb.RecognitionConfig_LINEAR16
		default:
			return "", fmt.Errorf("%w: unsupported encoding %q", speechtotext.ErrUnintelligible, info.Format.Name())
		}
		content = pcm
	}

	resp, err := g.recognize(ctx, &speechpb.RecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: content},
		},
	})
	if err != nil {
		err = classify(err)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return "", err
	}

	var transcript string
	var confidence float32
	for _, r := range resp.GetResults() {
		var best *speechpb.SpeechRecognitionAlternative
		for _, alt := range r.GetAlternatives() {
			if alt.GetTranscript() != "" && (best == nil || alt.GetConfidence() > best.GetConfidence()) {
				best = alt
			}
		}
		if best == nil {
			continue
		}
		if transcript != "" {
			transcript += " "
		}
		transcript += best.GetTranscript()
		confidence = max(confidence, best.GetConfidence())
	}

	span.SetAttributes(attribute.Float64("response.confidence", float64(confidence)))
	if transcript == "" {
		return "", speechtotext.ErrUnintelligible
	}
	return transcript, nil
}

func classify(err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.OutOfRange:
		return fmt.Errorf("%w: %v", speechtotext.ErrUnintelligible, err)
	default:
		return fmt.Errorf("%w: %v", speechtotext.ErrUnavailable, err)
	}
}

var _ speechtotext.Transcriber = (*GoogleSpeech)(nil)
