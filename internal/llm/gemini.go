package llm

import (
	"context"

	"google.golang.org/genai"

	"github.com/parchlabs/clauseguard/internal/domain"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

type geminiProvider struct {
	client *genai.Client
	model  string
}

// NewGemini creates the Gemini provider.
func NewGemini(ctx context.Context, apiKey, model string) (Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, domain.NewTransportError("failed to create gemini client", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &geminiProvider{client: c, model: model}, nil
}

func (p *geminiProvider) Name() string { return ProviderGemini }

// Complete sends one generation request and returns the candidate text.
// An empty candidate is returned as-is; response format checks happen in the
// caller.
func (p *geminiProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	temperature := opts.Temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature: &temperature,
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxOutputTokens)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", domain.NewTransportError("gemini generation failed", err)
	}

	return result.Text(), nil
}
