package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/koscakluka/tripper/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultURL = "https://api.groq.com/openai/v1/chat/completions"

	// DefaultChatModel is used for chatting and place extraction
	DefaultChatModel = "llama-3.3-70b-versatile"
	// DefaultPlanModel is used for itinerary generation
	DefaultPlanModel = "llama3-70b-8192"
)

// Client talks to the Groq chat completions API. A zero value is not usable,
// use [NewClient].
type Client struct {
	apiKey string
	model  string
	url    string

	httpClient *http.Client
}

type ClientOption func(*Client)

// WithURL overrides the chat completions endpoint.
func WithURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	if model == "" {
		model = DefaultChatModel
	}

	c := &Client{
		apiKey: apiKey,
		model:  model,
		url:    defaultURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model used by the client.
func (c *Client) Model() string { return c.model }

func (c *Client) PromptWithStream(ctx context.Context, prompt *string, opts ...llms.PromptOption) llms.Stream {
	return PromptWithStream(ctx, c, prompt, opts...)
}

func (c *Client) Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error) {
	return Prompt(ctx, c, prompt, opts...)
}

func (c *Client) PromptWithStructure(ctx context.Context, prompt string, output any, opts ...llms.PromptOption) error {
	return PromptJSONSchema(ctx, c, prompt, output, opts...)
}

const (
	endMessage  = "[DONE]"
	chunkPrefix = "data:"
)

type requestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	Stream         bool                `json:"stream,omitempty"`
	Temperature    *float64            `json:"temperature,omitempty"`
	TopP           *float64            `json:"top_p,omitempty"`
	MaxTokens      *int                `json:"max_completion_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

func newRequestBody(model string, messages []message, options llms.PromptOptions) requestBody {
	return requestBody{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
		TopP:        options.TopP,
		MaxTokens:   options.MaxTokens,
	}
}

// post sends the body to the completions endpoint and returns the response
// if the status is OK. The caller is responsible for closing the body.
func (c *Client) post(ctx context.Context, span trace.Span, body requestBody) (*http.Response, error) {
	requestBodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	span.SetAttributes(attribute.String("request.url", req.URL.String()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		if errorBody, err := io.ReadAll(resp.Body); err != nil {
			span.SetAttributes(attribute.String("error", fmt.Sprintf("error reading error body: %v", err)))
		} else {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return resp, nil
}

// StatusError is returned when Groq responds with a non-OK status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return "non-OK HTTP status: " + e.Status
}

type usage struct {
	QueueTime        float64 `json:"queue_time"`
	PromptTokens     int     `json:"prompt_tokens"`
	PromptTime       float64 `json:"prompt_time"`
	CompletionTokens int     `json:"completion_tokens"`
	CompletionTime   float64 `json:"completion_time"`
	TotalTokens      int     `json:"total_tokens"`
	TotalTime        float64 `json:"total_time"`
}

func (u usage) record(span trace.Span) {
	span.SetAttributes(
		attribute.Int("usage.input", u.PromptTokens),
		attribute.Int("usage.output", u.CompletionTokens),
		attribute.Int("usage.total", u.TotalTokens),
		attribute.Float64("usage.queue_time", u.QueueTime),
		attribute.Float64("usage.prompt_time", u.PromptTime),
		attribute.Float64("usage.completion_time", u.CompletionTime),
		attribute.Float64("usage.total_time", u.TotalTime),
	)
}

func (u usage) toLLMs() llms.Usage {
	return llms.Usage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
		QueueTime:    u.QueueTime,
		TotalTime:    u.TotalTime,
	}
}
