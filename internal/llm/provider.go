package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider names accepted by New.
const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

var (
	// ErrNoAPIKey is returned when the configured provider has no API key.
	ErrNoAPIKey = errors.New("provider API key not set")
	// ErrUnknownProvider is returned for a provider name New does not know.
	ErrUnknownProvider = errors.New("unknown model provider")
)

// Options are the per-request generation knobs shared by all providers.
type Options struct {
	Temperature     float32
	MaxOutputTokens int
}

// Provider is a chat-completion backend. Implementations translate the
// system/user prompt pair into their native request shape and return the raw
// text of the first candidate.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
}

// Config selects and configures a provider at startup.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the API endpoint for OpenAI-compatible providers.
	BaseURL string
	// RequestsPerMinute throttles outbound calls when positive.
	RequestsPerMinute int
}

// New builds the configured provider. Provider selection happens once here;
// callers only ever see the Provider interface.
func New(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case ProviderOpenAI:
		p = NewOpenAI(cfg.APIKey, cfg.Model)
	case ProviderOpenRouter:
		p = NewOpenRouter(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderGemini:
		p, err = NewGemini(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerMinute > 0 {
		p = WithRateLimit(p, cfg.RequestsPerMinute)
	}
	return p, nil
}
