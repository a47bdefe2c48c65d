package tripper

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/koscakluka/tripper/core/geocoding"
	"github.com/koscakluka/tripper/core/llms"
	"github.com/koscakluka/tripper/core/texttospeech"
)

var errOffline = errors.New("service offline")

type contentChunk string

func (c contentChunk) FinishReason() *string { return nil }
func (c contentChunk) Content() string       { return string(c) }

// fakeStream yields pieces in order, then err if set.
type fakeStream struct {
	pieces  []string
	err     error
	emitted *atomic.Int32
}

func (s fakeStream) Chunks(context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		for _, piece := range s.pieces {
			if s.emitted != nil {
				s.emitted.Add(1)
			}
			if !yield(contentChunk(piece), nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

type fakeStreamingLLM struct {
	pieces  []string
	err     error
	calls   atomic.Int32
	emitted atomic.Int32
	options llms.PromptOptions
}

func (l *fakeStreamingLLM) PromptWithStream(_ context.Context, _ *string, opts ...llms.PromptOption) llms.Stream {
	l.calls.Add(1)
	l.options = llms.NewPromptOptions("", opts...)
	return fakeStream{pieces: l.pieces, err: l.err, emitted: &l.emitted}
}

// fakeLLM answers general prompts by system prompt and optionally decodes
// structured answers.
type fakeLLM struct {
	responses  map[string]string
	err        error
	extractErr error
	calls      atomic.Int32
	prompts    []string
	options    []llms.PromptOptions
}

func (l *fakeLLM) Prompt(_ context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error) {
	l.calls.Add(1)
	options := llms.NewPromptOptions("", opts...)
	l.prompts = append(l.prompts, prompt)
	l.options = append(l.options, options)

	if options.Instructions == extractorSystemPrompt {
		if l.extractErr != nil {
			return nil, l.extractErr
		}
	} else if l.err != nil {
		return nil, l.err
	}
	return &llms.Response{Content: l.responses[options.Instructions]}, nil
}

type fakeStructuredLLM struct {
	fakeLLM
	structured atomic.Int32
}

func (l *fakeStructuredLLM) PromptWithStructure(_ context.Context, _ string, output any, opts ...llms.PromptOption) error {
	l.structured.Add(1)
	options := llms.NewPromptOptions("", opts...)
	return json.Unmarshal([]byte(l.responses[options.Instructions]), output)
}

type fakeSynthesizer struct {
	err       error
	languages []string
}

func (s *fakeSynthesizer) Synthesize(_ context.Context, text string, languageCode string) (texttospeech.Audio, error) {
	s.languages = append(s.languages, languageCode)
	if s.err != nil {
		return texttospeech.Audio{}, s.err
	}
	return texttospeech.Audio{Data: []byte(text), ContentType: "audio/wav", Extension: ".wav"}, nil
}

type fakeStore struct {
	err   error
	names []string
}

func (s *fakeStore) Save(_ context.Context, name string, _ string, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.names = append(s.names, name)
	return "/audio/" + name, nil
}

func staticGeocoder(points map[string]geocoding.Point, failing ...string) geocoding.Geocoder {
	return geocoding.GeocoderFunc(func(_ context.Context, name string) (geocoding.Point, bool, error) {
		for _, f := range failing {
			if f == name {
				return geocoding.Point{}, false, errOffline
			}
		}
		point, ok := points[name]
		return point, ok, nil
	})
}

type fixedTimezone string

func (z fixedTimezone) GetTimezoneName(float64, float64) string { return string(z) }
