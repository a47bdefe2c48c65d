package llms

// Message is a single entry of the conversation sent to an LLM.
type Message struct {
	Role    MessageRole
	Content string
}

// Response is a single, non-streamed response from an LLM
type Response struct {
	Content string
	Usage   *Usage
}

// MessageRole describes who the message is from
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func UserMessage(content string) Message {
	return Message{Role: MessageRoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: MessageRoleAssistant, Content: content}
}
