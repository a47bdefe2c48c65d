package groq

import (
	"github.com/koscakluka/tripper/core/llms"
)

type message struct {
	Role    messageRole `json:"role"`
	Content string      `json:"content"`
}

type messageRole string

const (
	messageRoleSystem    messageRole = "system"
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
)

func toMessages(instructions string, history []llms.Message) []message {
	messages := []message{}
	if instructions != "" {
		messages = append(messages, message{
			Role:    messageRoleSystem,
			Content: instructions,
		})
	}
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}

		switch msg.Role {
		case llms.MessageRoleSystem:
			messages = append(messages, message{Role: messageRoleSystem, Content: msg.Content})
		case llms.MessageRoleAssistant:
			messages = append(messages, message{Role: messageRoleAssistant, Content: msg.Content})
		default:
			messages = append(messages, message{Role: messageRoleUser, Content: msg.Content})
		}
	}
	return messages
}

// buildMessages converts prompt options to the wire format and appends the
// prompt, if any, as the last user message.
func buildMessages(options llms.PromptOptions, prompt *string) []message {
	messages := toMessages(options.Instructions, options.Messages)
	if prompt != nil {
		messages = append(messages, message{
			Role:    messageRoleUser,
			Content: *prompt,
		})
	}
	return messages
}
