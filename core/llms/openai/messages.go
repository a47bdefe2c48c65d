package openai

import (
	"github.com/koscakluka/tripper/core/llms"
	openaisdk "github.com/openai/openai-go"
)

func toOpenAIMessages(instructions string, history []llms.Message, prompt *string) []openaisdk.ChatCompletionMessageParamUnion {
	messages := []openaisdk.ChatCompletionMessageParamUnion{}
	if instructions != "" {
		messages = append(messages, openaisdk.SystemMessage(instructions))
	}

	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case llms.MessageRoleSystem:
			messages = append(messages, openaisdk.SystemMessage(msg.Content))
		case llms.MessageRoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(msg.Content))
		}
	}

	if prompt != nil {
		messages = append(messages, openaisdk.UserMessage(*prompt))
	}
	return messages
}

func newParams(model string, options llms.PromptOptions, prompt *string) openaisdk.ChatCompletionNewParams {
	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(model),
		Messages: toOpenAIMessages(options.Instructions, options.Messages, prompt),
	}
	if options.Temperature != nil {
		params.Temperature = openaisdk.Float(*options.Temperature)
	}
	if options.TopP != nil {
		params.TopP = openaisdk.Float(*options.TopP)
	}
	if options.MaxTokens != nil {
		params.MaxCompletionTokens = openaisdk.Int(int64(*options.MaxTokens))
	}
	return params
}

func toUsage(usage openaisdk.CompletionUsage) llms.Usage {
	return llms.Usage{
		InputTokens:  int(usage.PromptTokens),
		OutputTokens: int(usage.CompletionTokens),
		TotalTokens:  int(usage.TotalTokens),
	}
}
