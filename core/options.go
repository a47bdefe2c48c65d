package tripper

import (
	"context"

	"github.com/koscakluka/tripper/core/geocoding"
	"github.com/koscakluka/tripper/core/llms"
	"github.com/koscakluka/tripper/core/texttospeech"
)

type LLMWithStream interface {
	PromptWithStream(ctx context.Context, prompt *string, opts ...llms.PromptOption) llms.Stream
}

type LLMWithGeneralPrompt interface {
	Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error)
}

type LLMWithStructuredPrompt interface {
	PromptWithStructure(ctx context.Context, prompt string, output any, opts ...llms.PromptOption) error
}

// AudioStore keeps synthesized replies and returns a URI for them.
type AudioStore interface {
	Save(ctx context.Context, name string, contentType string, data []byte) (string, error)
}

// TimezoneFinder names the IANA timezone at a coordinate.
type TimezoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

type AssistantOption func(*Assistant)

// WithVoice enables spoken replies for submissions that opt in.
func WithVoice(synthesizer texttospeech.Synthesizer, store AudioStore) AssistantOption {
	return func(a *Assistant) {
		a.synthesizer = synthesizer
		a.store = store
	}
}

// WithContextDepth sets how many recent turns are sent with each message.
func WithContextDepth(depth int) AssistantOption {
	return func(a *Assistant) {
		if depth > 0 {
			a.contextDepth = depth
		}
	}
}

func WithChatSampling(temperature, topP float64, maxTokens int) AssistantOption {
	return func(a *Assistant) {
		a.temperature = temperature
		a.topP = topP
		if maxTokens > 0 {
			a.maxTokens = maxTokens
		}
	}
}

// WithPersona replaces the travel guide system prompt. The language
// directive is still appended.
func WithPersona(persona string) AssistantOption {
	return func(a *Assistant) {
		if persona != "" {
			a.persona = persona
		}
	}
}

type PlannerOption func(*Planner)

// WithExtractionLLM uses a separate model for place extraction.
func WithExtractionLLM(client LLMWithGeneralPrompt) PlannerOption {
	return func(p *Planner) {
		if client != nil {
			p.extractor = client
		}
	}
}

// WithStructuredExtraction asks for a JSON list of places when the
// extraction model supports structured prompts.
func WithStructuredExtraction() PlannerOption {
	return func(p *Planner) {
		p.structuredExtraction = true
	}
}

func WithGeocoder(geocoder geocoding.Geocoder) PlannerOption {
	return func(p *Planner) {
		p.geocoder = geocoder
	}
}

func WithTimezoneFinder(finder TimezoneFinder) PlannerOption {
	return func(p *Planner) {
		p.timezones = finder
	}
}

// WithMaxDistanceKm sets the radius around the anchor within which places
// are kept on the map.
func WithMaxDistanceKm(km float64) PlannerOption {
	return func(p *Planner) {
		if km > 0 {
			p.maxDistanceKm = km
		}
	}
}

func WithMapZoom(zoom int) PlannerOption {
	return func(p *Planner) {
		if zoom > 0 {
			p.zoom = zoom
		}
	}
}

func WithPlanSampling(temperature, topP float64, maxTokens int) PlannerOption {
	return func(p *Planner) {
		p.temperature = temperature
		p.topP = topP
		if maxTokens > 0 {
			p.maxTokens = maxTokens
		}
	}
}
