package llm

import (
	"context"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parchlabs/clauseguard/internal/domain"
)

const (
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = openai.GPT4oMini
	// DefaultOpenRouterModel lets OpenRouter route to its default pool.
	DefaultOpenRouterModel = "openrouter/auto"
	// DefaultOpenRouterBaseURL is OpenRouter's OpenAI-compatible endpoint.
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// chatAPI is the slice of the OpenAI SDK surface the provider needs.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// chatProvider serves any OpenAI-compatible chat API. OpenRouter speaks the
// same wire protocol, so both providers share this implementation.
type chatProvider struct {
	api   chatAPI
	model string
	name  string
}

// NewOpenAI creates the OpenAI provider.
func NewOpenAI(apiKey, model string) Provider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &chatProvider{
		api:   openai.NewClient(apiKey),
		model: model,
		name:  ProviderOpenAI,
	}
}

// NewOpenRouter creates the OpenRouter provider, pointing the OpenAI SDK at
// OpenRouter's compatible endpoint.
func NewOpenRouter(apiKey, model, baseURL string) Provider {
	if model == "" {
		model = DefaultOpenRouterModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &chatProvider{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
		name:  ProviderOpenRouter,
	}
}

func (p *chatProvider) Name() string { return p.name }

// Complete sends one chat completion request and returns the first choice.
// A response without content is returned as an empty string; response format
// checks happen in the caller.
func (p *chatProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	temperature := opts.Temperature
	if temperature == 0 {
		// The SDK drops a zero temperature from the wire request, which would
		// fall back to the API default of 1. The smallest nonzero value keeps
		// the request deterministic.
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	if opts.MaxOutputTokens > 0 {
		req.MaxTokens = opts.MaxOutputTokens
	}

	resp, err := p.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", domain.NewTransportError("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
