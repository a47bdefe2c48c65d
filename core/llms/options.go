package llms

// PromptOptions contains all the options for a prompt. It is shared by
// general, streaming and structured prompts.
type PromptOptions struct {
	Instructions string
	Messages     []Message

	// Sampling parameters, nil means the provider default is used
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// PromptOption is a function that can be used to modify the prompt options.
type PromptOption func(*PromptOptions)

// NewPromptOptions builds options starting from the passed system prompt and
// applying opts in order.
func NewPromptOptions(systemPrompt string, opts ...PromptOption) PromptOptions {
	options := PromptOptions{Instructions: systemPrompt}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithSystemPrompt sets the system prompt for the prompt.
// Repeating this option will overwrite the previous system prompt.
func WithSystemPrompt(prompt string) PromptOption {
	return func(opts *PromptOptions) {
		opts.Instructions = prompt
	}
}

// WithMessages adds passed messages to the prompt, they are sent before the
// prompt itself.
// Repeating this option will sequentially add more messages.
func WithMessages(messages ...Message) PromptOption {
	return func(opts *PromptOptions) {
		opts.Messages = append(opts.Messages, messages...)
	}
}

func WithTemperature(temperature float64) PromptOption {
	return func(opts *PromptOptions) {
		opts.Temperature = &temperature
	}
}

func WithTopP(topP float64) PromptOption {
	return func(opts *PromptOptions) {
		opts.TopP = &topP
	}
}

// WithMaxTokens limits the number of generated tokens. Values below 1 are
// ignored.
func WithMaxTokens(maxTokens int) PromptOption {
	return func(opts *PromptOptions) {
		if maxTokens < 1 {
			return
		}
		opts.MaxTokens = &maxTokens
	}
}
