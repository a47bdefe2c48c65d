package tripper

import (
	"context"
	_ "embed"
	"errors"

	"github.com/koscakluka/tripper/core/geocoding"
	"github.com/koscakluka/tripper/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:embed plannerInstr.tmpl
var plannerSystemPrompt string

const (
	DefaultMaxDistanceKm = 500
	DefaultMapZoom       = 12

	defaultPlanTemperature = 0.7
	defaultPlanTopP        = 0.9
	defaultPlanMaxTokens   = 2048
)

// Plan is a generated itinerary with the places it mentions.
type Plan struct {
	Itinerary string    `json:"itinerary"`
	Places    PlaceList `json:"places"`
	// Prompt is the request the itinerary was generated from
	Prompt string `json:"prompt"`
}

// Planner turns trip constraints into an itinerary, places and a map.
type Planner struct {
	llm       LLMWithGeneralPrompt
	extractor LLMWithGeneralPrompt

	geocoder  geocoding.Geocoder
	timezones TimezoneFinder

	structuredExtraction bool
	maxDistanceKm        float64
	zoom                 int
	temperature          float64
	topP                 float64
	maxTokens            int
}

func NewPlanner(llm LLMWithGeneralPrompt, opts ...PlannerOption) *Planner {
	p := &Planner{
		llm:           llm,
		extractor:     llm,
		maxDistanceKm: DefaultMaxDistanceKm,
		zoom:          DefaultMapZoom,
		temperature:   defaultPlanTemperature,
		topP:          defaultPlanTopP,
		maxTokens:     defaultPlanMaxTokens,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate writes an itinerary for constraints and extracts its places.
// Invalid constraints are rejected before the model is called. A failed
// extraction still returns the itinerary, with no places.
func (p *Planner) Generate(ctx context.Context, constraints TripConstraints) (Plan, error) {
	ctx, span := tracer.Start(ctx, "generate plan")
	defer span.End()

	if err := constraints.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Plan{}, err
	}

	prompt := constraints.Prompt()
	span.SetAttributes(attribute.String("request.prompt", prompt))

	response, err := p.llm.Prompt(ctx, prompt,
		llms.WithSystemPrompt(plannerSystemPrompt),
		llms.WithTemperature(p.temperature),
		llms.WithTopP(p.topP),
		llms.WithMaxTokens(p.maxTokens),
	)
	if err != nil {
		err = &OracleError{Op: "generate itinerary", Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Plan{Prompt: prompt}, err
	}

	plan := Plan{Itinerary: response.Content, Prompt: prompt, Places: PlaceList{}}
	span.SetAttributes(attribute.Int("response.length", len(plan.Itinerary)))

	places, err := p.Extract(ctx, plan.Itinerary)
	if err != nil {
		logger.Warn("failed to extract places", "error", err)
		span.AddEvent("place extraction failed")
		return plan, nil
	}
	plan.Places = places
	return plan, nil
}

// IsOracleError reports whether err came from the completion service.
func IsOracleError(err error) bool {
	var oracleErr *OracleError
	return errors.As(err, &oracleErr)
}
