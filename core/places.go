package tripper

import (
	"context"
	_ "embed"
	"strings"

	"github.com/koscakluka/tripper/core/llms"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:embed extractorInstr.tmpl
var extractorSystemPrompt string

//go:embed extractorStructInstr.tmpl
var extractorStructuredSystemPrompt string

const (
	extractTemperature = 0
	extractTopP        = 1
	extractMaxTokens   = 5000
)

// PlaceList holds place names in itinerary order. The first entry is the
// destination and anchors the map.
type PlaceList []string

type placeList struct {
	Places []string `json:"places" jsonschema:"title=Places,description=Place names with the destination city first"`
}

// Extract asks the model for the places named in itinerary. Lines are kept
// as returned; geocoding decides which of them are real places.
func (p *Planner) Extract(ctx context.Context, itinerary string) (PlaceList, error) {
	if strings.TrimSpace(itinerary) == "" {
		return PlaceList{}, nil
	}

	ctx, span := tracer.Start(ctx, "extract places")
	defer span.End()

	opts := []llms.PromptOption{
		llms.WithTemperature(extractTemperature),
		llms.WithTopP(extractTopP),
		llms.WithMaxTokens(extractMaxTokens),
	}

	var places PlaceList
	if llm, ok := p.extractor.(LLMWithStructuredPrompt); ok && p.structuredExtraction {
		var resp placeList
		if err := llm.PromptWithStructure(ctx, itinerary, &resp,
			append(opts, llms.WithSystemPrompt(extractorStructuredSystemPrompt))...,
		); err != nil {
			err = &OracleError{Op: "extract places", Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		places = lo.Filter(lo.Map(resp.Places, func(name string, _ int) string {
			return strings.TrimSpace(name)
		}), func(name string, _ int) bool { return name != "" })
	} else {
		var err error
		if places, err = p.extractLines(ctx, p.extractor, itinerary, opts); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if places == nil {
		places = PlaceList{}
	}
	span.SetAttributes(attribute.Int("response.places", len(places)))
	return places, nil
}

func (p *Planner) extractLines(ctx context.Context, llm LLMWithGeneralPrompt, itinerary string, opts []llms.PromptOption) (PlaceList, error) {
	response, err := llm.Prompt(ctx, itinerary, append(opts, llms.WithSystemPrompt(extractorSystemPrompt))...)
	if err != nil {
		return nil, &OracleError{Op: "extract places", Err: err}
	}
	return splitPlaces(response.Content), nil
}

func splitPlaces(text string) PlaceList {
	return lo.Compact(lo.Map(strings.Split(strings.TrimSpace(text), "\n"), func(line string, _ int) string {
		return strings.TrimSpace(line)
	}))
}
