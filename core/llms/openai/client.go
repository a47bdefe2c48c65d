package openai

import (
	"context"
	"net/http"

	"github.com/koscakluka/tripper/core/llms"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultModel = "gpt-4o-mini"

// Client is a completion oracle backed by any OpenAI compatible chat
// completions API.
type Client struct {
	model  string
	client openaisdk.Client
}

type ClientOption func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at an OpenAI compatible server, e.g.
// "https://api.groq.com/openai/v1/".
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	options := clientOptions{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(&options)
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(options.httpClient),
		option.WithMaxRetries(1),
	}
	if options.baseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(options.baseURL))
	}

	if model == "" {
		model = DefaultModel
	}

	return &Client{
		model:  model,
		client: openaisdk.NewClient(requestOptions...),
	}
}

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
