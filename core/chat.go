package tripper

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/google/uuid"
	"github.com/koscakluka/tripper/core/llms"
	"github.com/koscakluka/tripper/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultContextDepth = 3

	defaultChatTemperature = 0.7
	defaultChatTopP        = 0.9
	defaultChatMaxTokens   = 5000
)

const travelGuidePersona = "You are an expert travel guide for Japan with 10+ years of experience. " +
	"You provide detailed vacation plans, suggest popular attractions, local food, and affordable luxury hotels. " +
	"Your recommendations are practical and budget-friendly. " +
	"You also speak 10+ languages and can respond in other languages if needed."

// Assistant streams chat replies into a conversation.
type Assistant struct {
	llm LLMWithStream

	synthesizer texttospeech.Synthesizer
	store       AudioStore

	persona      string
	contextDepth int
	temperature  float64
	topP         float64
	maxTokens    int
}

func NewAssistant(llm LLMWithStream, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		llm:          llm,
		persona:      travelGuidePersona,
		contextDepth: DefaultContextDepth,
		temperature:  defaultChatTemperature,
		topP:         defaultChatTopP,
		maxTokens:    defaultChatMaxTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// VoiceEnabled reports whether spoken replies can be produced.
func (a *Assistant) VoiceEnabled() bool {
	return a.synthesizer != nil && a.store != nil
}

// Submit adds message to conv and streams the reply. Every yielded value is
// an independent snapshot; each one extends the reply of the previous one.
//
// When audioOptIn is set the finished reply is also synthesized and appended
// as a separate audio turn, yielded last.
//
// A blank message or a conversation with an open turn yields conv unchanged
// once. Stopping the iteration early closes the turn with the text received
// so far.
func (a *Assistant) Submit(ctx context.Context, conv *Conversation, message string, audioOptIn bool, language string) iter.Seq[Conversation] {
	return func(yield func(Conversation) bool) {
		ctx, span := tracer.Start(ctx, "submit message")
		defer span.End()
		span.SetAttributes(
			attribute.Bool("request.audio", audioOptIn),
			attribute.String("request.language", language),
			attribute.Int("conversation.turns", conv.Len()),
		)

		if strings.TrimSpace(message) == "" {
			logger.Warn("ignoring blank message")
			yield(conv.Snapshot())
			return
		}
		if err := conv.openTurn(message); err != nil {
			logger.Warn("ignoring message", "error", err)
			yield(conv.Snapshot())
			return
		}

		reply, ok := a.streamReply(ctx, span, conv, language, yield)
		if !ok {
			return
		}

		if audioOptIn {
			a.appendSpokenReply(ctx, span, conv, reply, language)
			yield(conv.Snapshot())
		}
	}
}

// streamReply fills the open turn of conv. It returns the final reply and
// whether the consumer still wants more values.
func (a *Assistant) streamReply(ctx context.Context, span trace.Span, conv *Conversation, language string, yield func(Conversation) bool) (string, bool) {
	stream := a.llm.PromptWithStream(ctx, nil,
		llms.WithSystemPrompt(a.systemPrompt(language)),
		llms.WithMessages(a.contextMessages(conv)...),
		llms.WithTemperature(a.temperature),
		llms.WithTopP(a.topP),
		llms.WithMaxTokens(a.maxTokens),
	)

	var reply strings.Builder
	increments := 0
	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if increments == 0 {
				logger.Error("chat completion failed", "error", err)
				conv.closeTurn(FallbackNotice)
				yield(conv.Snapshot())
				return "", false
			}
			logger.Error("chat completion interrupted", "error", err, "received", reply.Len())
			break
		}

		switch chunk := chunk.(type) {
		case llms.StreamContentChunk:
			if chunk.Content() == "" {
				continue
			}
			reply.WriteString(chunk.Content())
			increments++
			conv.setReply(reply.String())
			if !yield(conv.Snapshot()) {
				conv.closeTurn(reply.String())
				span.AddEvent("consumer stopped")
				return reply.String(), false
			}
		case llms.StreamUsageChunk:
			usage := chunk.Usage()
			span.SetAttributes(
				attribute.Int("response.usage.input_tokens", usage.InputTokens),
				attribute.Int("response.usage.output_tokens", usage.OutputTokens),
			)
		}
	}

	conv.closeTurn(reply.String())
	span.SetAttributes(
		attribute.Int("response.increments", increments),
		attribute.Int("response.length", reply.Len()),
	)
	if increments == 0 {
		return "", yield(conv.Snapshot())
	}
	return reply.String(), true
}

func (a *Assistant) systemPrompt(language string) string {
	name := LanguageName(language)
	if name == "" {
		return a.persona
	}
	return fmt.Sprintf("%s Please respond in %s.", a.persona, name)
}

// contextMessages maps the recent turns, including the open one, to prompt
// messages. Audio replies and empty texts contribute nothing.
func (a *Assistant) contextMessages(conv *Conversation) []llms.Message {
	var messages []llms.Message
	for _, turn := range conv.ContextWindow(a.contextDepth) {
		if turn.UserText != "" {
			messages = append(messages, llms.UserMessage(turn.UserText))
		}
		if turn.Assistant.Kind == ReplyText && turn.Assistant.Text != "" {
			messages = append(messages, llms.AssistantMessage(turn.Assistant.Text))
		}
	}
	return messages
}

func (a *Assistant) appendSpokenReply(ctx context.Context, parent trace.Span, conv *Conversation, reply string, language string) {
	ctx, span := tracer.Start(ctx, "synthesize reply")
	defer span.End()

	fail := func(msg string, err error) {
		logger.Error(msg, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		parent.AddEvent(msg)
	}

	if !a.VoiceEnabled() {
		fail("cannot speak reply", errVoiceDisabled)
		return
	}
	if strings.TrimSpace(reply) == "" {
		fail("nothing to synthesize", texttospeech.ErrEmptyText)
		return
	}

	code := LanguageCode(language)
	span.SetAttributes(attribute.String("request.language_code", code))

	spoken, err := a.synthesizer.Synthesize(ctx, reply, code)
	if err != nil {
		fail("failed to synthesize reply", err)
		return
	}

	name := "bot_response_" + uuid.NewString() + spoken.Extension
	uri, err := a.store.Save(ctx, name, spoken.ContentType, spoken.Data)
	if err != nil {
		fail("failed to store synthesized reply", err)
		return
	}
	span.SetAttributes(attribute.String("response.uri", uri))

	if err := conv.appendAudioTurn(AudioRef{URI: uri, ContentType: spoken.ContentType}); err != nil {
		fail("failed to append audio turn", err)
	}
}
