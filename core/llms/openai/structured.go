package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/tripper/core/llms"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PromptJSONSchema requests a strict JSON schema response and decodes it into
// output, which must be a pointer.
func PromptJSONSchema(
	ctx context.Context,
	client *Client,
	prompt string,
	output any,
	opts ...llms.PromptOption,
) error {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", client.model))

	outputType := reflect.TypeOf(output)
	if outputType == nil || outputType.Kind() != reflect.Pointer {
		err := fmt.Errorf("output must be a non-nil pointer, got %T", output)
		span.RecordError(err)
		return err
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.ReflectFromType(outputType.Elem())

	options := llms.NewPromptOptions("", opts...)
	params := newParams(client.model, options, &prompt)
	params.ResponseFormat = openaisdk.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   outputType.Elem().Name(),
				Schema: schema,
				Strict: openaisdk.Bool(true),
			},
		},
	}

	completion, err := client.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = fmt.Errorf("error requesting completion: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(completion.Choices) == 0 {
		span.RecordError(ErrEmptyResponse)
		return ErrEmptyResponse
	}

	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), output); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
