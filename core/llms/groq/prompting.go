package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/koscakluka/tripper/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyResponse is returned when the completion contains no choices.
var ErrEmptyResponse = errors.New("groq returned no choices")

// Prompt sends a single, non-streamed completion request.
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
	reqBody := newRequestBody(client.model, buildMessages(options, &prompt), options)

	content, u, err := client.complete(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	response := &llms.Response{Content: content}
	if u != nil {
		u.record(span)
		tokenCounter.Add(ctx, int64(u.TotalTokens))
		response.Usage = new(llms.Usage)
		*response.Usage = u.toLLMs()
	}
	return response, nil
}

// complete performs a non-streamed request and returns the first choice's
// message content.
func (c *Client) complete(ctx context.Context, body requestBody) (string, *usage, error) {
	span := trace.SpanFromContext(ctx)
	resp, err := c.post(ctx, span, body)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("error reading response body: %w", err)
	}

	var responseBody responseBody
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		return "", nil, fmt.Errorf("error unmarshalling response: %w", err)
	}
	if len(responseBody.Choices) == 0 {
		return "", responseBody.Usage, ErrEmptyResponse
	}

	choice := responseBody.Choices[0]
	if choice.FinishReason != nil {
		span.SetAttributes(attribute.String("response.finish_reason", *choice.FinishReason))
		if *choice.FinishReason == "length" {
			logger.WarnContext(ctx, "completion truncated by token limit", "model", body.Model)
		}
	}
	return choice.Message.Content, responseBody.Usage, nil
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *usage `json:"usage"`
}
