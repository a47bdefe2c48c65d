package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/tripper/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PromptJSONSchema asks the model to answer with JSON matching the schema
// reflected from output and decodes the answer into output, which must be a
// pointer.
func PromptJSONSchema(
	ctx context.Context,
	client *Client,
	prompt string,
	output any,
	opts ...llms.PromptOption,
) error {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	outputType := reflect.TypeOf(output)
	if outputType == nil || outputType.Kind() != reflect.Pointer {
		err := fmt.Errorf("output must be a non-nil pointer, got %T", output)
		span.RecordError(err)
		return err
	}

	options := llms.NewPromptOptions("", opts...)

	// TODO: Implement a custom reflector that only satisfies the subset of
	// jsonschema used by groq
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.ReflectFromType(outputType.Elem())

	reqBody := newRequestBody(client.model, buildMessages(options, &prompt), options)
	reqBody.ResponseFormat = &chatResponseFormat{
		Type: "json_schema",
		JSONSchema: &jsonSchema{
			Name:   outputType.Elem().Name(),
			Schema: schema,
			Strict: true,
		},
	}

	span.SetAttributes(attribute.String("request.model", client.model))
	if schemaString, err := schema.MarshalJSON(); err == nil {
		span.SetAttributes(attribute.String("request.schema", string(schemaString)))
	}

	content, u, err := client.complete(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if u != nil {
		u.record(span)
		tokenCounter.Add(ctx, int64(u.TotalTokens))
	}

	if split := strings.Split(content, "```"); len(split) > 1 {
		content = strings.TrimPrefix(split[1], "json")
	}
	if err := json.Unmarshal([]byte(content), output); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

type chatResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	// Name is used to further identify the schema in the response.
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Schema      *jsonschema.Schema `json:"schema"`
	// Strict determines whether to enforce the schema upon the generated
	// content.
	Strict bool `json:"strict"`
}
