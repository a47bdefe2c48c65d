package google

import (
	"context"
	"errors"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/koscakluka/tripper/core/audio"
	"github.com/koscakluka/tripper/core/speechtotext"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestSpeech(recognize recognizeFunc) *GoogleSpeech {
	return &GoogleSpeech{
		recognize:    recognize,
		Encoding:     speechpb.RecognitionConfig_LINEAR16,
		SampleRateHz: audio.DefaultSampleRate,
	}
}

func TestTranscribePicksMostConfidentAlternatives(t *testing.T) {
	var captured *speechpb.RecognizeRequest
	g := newTestSpeech(func(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		captured = req
		return &speechpb.RecognizeResponse{Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{
				{Transcript: "京都への旅", Confidence: 0.4},
				{Transcript: "京都への旅行", Confidence: 0.9},
			}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{
				{Transcript: "を計画して", Confidence: 0.8},
			}},
		}}, nil
	})

	wav, _ := audio.EncodeWAV(make([]byte, 64), audio.EncodingInfo{SampleRate: 48000, Format: audio.EncodingLinear16})
	transcript, err := g.Transcribe(context.Background(), wav, "ja")
	if err != nil {
		t.Fatalf("expected transcription to succeed, got %v", err)
	}
	if transcript != "京都への旅行 を計画して" {
		t.Fatalf("unexpected transcript %q", transcript)
	}
	if captured.GetConfig().GetLanguageCode() != "ja-JP" {
		t.Fatalf("expected ja-JP, got %q", captured.GetConfig().GetLanguageCode())
	}
	if captured.GetConfig().GetSampleRateHertz() != 48000 {
		t.Fatalf("expected sample rate from wav header, got %d", captured.GetConfig().GetSampleRateHertz())
	}
	if len(captured.GetAudio().GetContent()) != 64 {
		t.Fatalf("expected wav header to be stripped, got %d bytes", len(captured.GetAudio().GetContent()))
	}
}

func TestTranscribeRawSamplesUseConfiguredFormat(t *testing.T) {
	var captured *speechpb.RecognizeRequest
	g := newTestSpeech(func(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		captured = req
		return &speechpb.RecognizeResponse{Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "Plan a trip", Confidence: 0.7}}},
		}}, nil
	})

	if _, err := g.Transcribe(context.Background(), []byte{1, 2, 3, 4}, "en"); err != nil {
		t.Fatalf("expected transcription to succeed, got %v", err)
	}
	if captured.GetConfig().GetSampleRateHertz() != 16000 {
		t.Fatalf("expected default sample rate, got %d", captured.GetConfig().GetSampleRateHertz())
	}
	if captured.GetConfig().GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Fatalf("expected linear16, got %v", captured.GetConfig().GetEncoding())
	}
	if len(captured.GetAudio().GetContent()) != 4 {
		t.Fatalf("expected raw samples to be sent as is, got %d bytes", len(captured.GetAudio().GetContent()))
	}
}

func TestTranscribeClassifiesErrors(t *testing.T) {
	cases := []struct {
		err      error
		expected error
	}{
		{status.Error(codes.InvalidArgument, "bad audio"), speechtotext.ErrUnintelligible},
		{status.Error(codes.Unavailable, "down"), speechtotext.ErrUnavailable},
		{errors.New("dial tcp: refused"), speechtotext.ErrUnavailable},
	}

	for _, c := range cases {
		g := newTestSpeech(func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return nil, c.err
		})
		if _, err := g.Transcribe(context.Background(), []byte{1, 2}, "en"); !errors.Is(err, c.expected) {
			t.Fatalf("expected %v for %v, got %v", c.expected, c.err, err)
		}
	}
}

func TestTranscribeEmptyResultIsUnintelligible(t *testing.T) {
	g := newTestSpeech(func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return &speechpb.RecognizeResponse{}, nil
	})
	if _, err := g.Transcribe(context.Background(), []byte{1, 2}, "en"); !errors.Is(err, speechtotext.ErrUnintelligible) {
		t.Fatalf("expected ErrUnintelligible, got %v", err)
	}
}
