package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/koscakluka/tripper/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrEmptyResponse = errors.New("openai returned no choices")

func Prompt(
	ctx context.Context,
	client *Client,
	prompt string,
	opts ...llms.PromptOption,
) (*llms.Response, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", client.model))

	options := llms.NewPromptOptions("", opts...)
	completion, err := client.client.Chat.Completions.New(ctx, newParams(client.model, options, &prompt))
	if err != nil {
		err = fmt.Errorf("error requesting completion: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(completion.Choices) == 0 {
		span.RecordError(ErrEmptyResponse)
		return nil, ErrEmptyResponse
	}

	if completion.Choices[0].FinishReason == "length" {
		logger.WarnContext(ctx, "completion truncated by token limit", "model", client.model)
	}

	usage := toUsage(completion.Usage)
	span.SetAttributes(attribute.Int("usage.total", usage.TotalTokens))
	return &llms.Response{
		Content: completion.Choices[0].Message.Content,
		Usage:   &usage,
	}, nil
}
