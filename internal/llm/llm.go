package llm

import (
	"context"
	"fmt"
	"strings"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    string
	Content string
}

// Client is a text-completion client. Implementations must honor the
// context deadline and surface a catchable error instead of blocking
// indefinitely.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// GroqBaseURL is the OpenAI-compatible endpoint Groq exposes for its
// hosted models.
const GroqBaseURL = "https://api.groq.com/openai/v1"

type Option func(*clientOptions)

type clientOptions struct {
	baseURL     string
	maxTokens   int
	temperature float32
	stop        []string
}

func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithMaxTokens caps the completion length. Zero means provider default.
func WithMaxTokens(n int) Option {
	return func(o *clientOptions) {
		o.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *clientOptions) {
		o.temperature = t
	}
}

// WithStop sets stop sequences that end the completion.
func WithStop(stop ...string) Option {
	return func(o *clientOptions) {
		o.stop = stop
	}
}

// ParseModel splits a "provider/model_name" string into its parts.
func ParseModel(model string) (provider, modelName string, err error) {
	parts := strings.SplitN(model, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid model format %q: expected provider/model_name", model)
	}
	return parts[0], parts[1], nil
}

// NewClient builds a completion client for the given provider. groq uses
// the OpenAI-compatible wire protocol against Groq's endpoint.
func NewClient(provider, apiKey, model string, opts ...Option) (Client, error) {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch provider {
	case "groq":
		if o.baseURL == "" {
			o.baseURL = GroqBaseURL
		}
		return newOpenAIClient(apiKey, model, o)
	case "openai":
		return newOpenAIClient(apiKey, model, o)
	case "anthropic":
		return newAnthropicClient(apiKey, model, o)
	case "gemini":
		return newGeminiClient(apiKey, model, o)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q: supported providers are groq, openai, anthropic, gemini", provider)
	}
}

// Prompt sends a single user message, the shape both the attribution
// oracle and the digest formatter use.
func Prompt(ctx context.Context, c Client, prompt string) (string, error) {
	return c.Complete(ctx, []Message{{Role: "user", Content: prompt}})
}
