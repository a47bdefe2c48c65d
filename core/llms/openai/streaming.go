package openai

import (
	"context"
	"fmt"

	"github.com/koscakluka/tripper/core/llms"
	openaisdk "github.com/openai/openai-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func PromptWithStream(
	_ context.Context,
	client *Client,
	prompt *string,
	opts ...llms.PromptOption,
) *Stream {
	options := llms.NewPromptOptions("", opts...)
	params := newParams(client.model, options, prompt)
	params.StreamOptions = openaisdk.ChatCompletionStreamOptionsParam{
		IncludeUsage: openaisdk.Bool(true),
	}

	return &Stream{client: client, params: params}
}

type Stream struct {
	client *Client
	params openaisdk.ChatCompletionNewParams
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "prompt llm stream")
		defer span.End()
		span.SetAttributes(attribute.String("request.model", s.client.model))

		stream := s.client.client.Chat.Completions.NewStreaming(ctx, s.params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()

			var finishReason *string
			if len(chunk.Choices) > 0 {
				choice := chunk.Choices[0]
				if choice.FinishReason != "" {
					finishReason = &choice.FinishReason
				}
				if choice.Delta.Content != "" {
					if !yield(StreamContentChunk{
						finishReason: finishReason,
						content:      choice.Delta.Content,
					}, nil) {
						return
					}
				}
			}

			if chunk.Usage.TotalTokens > 0 {
				span.SetAttributes(
					attribute.Int64("usage.input", chunk.Usage.PromptTokens),
					attribute.Int64("usage.output", chunk.Usage.CompletionTokens),
					attribute.Int64("usage.total", chunk.Usage.TotalTokens),
				)
				if !yield(StreamUsageChunk{
					finishReason: finishReason,
					usage:        toUsage(chunk.Usage),
				}, nil) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			err = fmt.Errorf("error reading streamed response: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
		}
	}
}

type StreamContentChunk struct {
	finishReason *string
	content      string
}

func (s StreamContentChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamContentChunk) Content() string {
	return s.content
}

type StreamUsageChunk struct {
	finishReason *string
	usage        llms.Usage
}

func (s StreamUsageChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamUsageChunk) Usage() llms.Usage {
	return s.usage
}
