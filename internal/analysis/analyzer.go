package analysis

import (
	"context"
	"log"
	"time"

	"github.com/parchlabs/clauseguard/internal/domain"
	"github.com/parchlabs/clauseguard/internal/llm"
	"github.com/parchlabs/clauseguard/internal/metrics"
	"github.com/parchlabs/clauseguard/internal/telemetry"
)

// DefaultMaxAttempts is how many times a chunk is sent to the provider before
// it is abandoned.
const DefaultMaxAttempts = 3

// Analyzer runs a single chunk through the model provider and validates the
// response, retrying with a corrective prompt when the output is malformed.
type Analyzer struct {
	provider        llm.Provider
	validator       *Validator
	maxAttempts     int
	maxOutputTokens int
}

// AnalyzerOption customizes an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithMaxAttempts overrides the per-chunk attempt budget.
func WithMaxAttempts(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithMaxOutputTokens caps the provider's response length.
func WithMaxOutputTokens(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxOutputTokens = n
	}
}

// NewAnalyzer creates an Analyzer backed by the given provider.
func NewAnalyzer(provider llm.Provider, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		provider:    provider,
		validator:   NewValidator(),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeChunk returns the validated findings for one chunk. Requests run at
// temperature zero so retries are only spent on format failures, and retry
// prompts carry an explicit correction. A chunk that never yields a valid
// response contributes zero findings rather than failing the document; the
// exhaustion is logged and reported.
func (a *Analyzer) AnalyzeChunk(ctx context.Context, chunk Chunk) []domain.RiskItem {
	ctx, span := telemetry.StartSpan(ctx, "analysis.chunk", telemetry.SpanAttributes{
		Provider:  a.provider.Name(),
		Operation: "analyze_chunk",
	})
	defer span.End()

	prompt := BuildAnalysisPrompt(chunk.Text)
	var lastErr error

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if attempt > 1 {
			prompt = WithFormatCorrection(BuildAnalysisPrompt(chunk.Text))
		}

		started := time.Now()
		raw, err := a.provider.Complete(ctx, SystemPrompt, prompt, llm.Options{
			Temperature:     0,
			MaxOutputTokens: a.maxOutputTokens,
		})
		if err != nil {
			metrics.ObserveProviderCall(a.provider.Name(), "error", time.Since(started))
			log.Printf("analysis: provider call failed (attempt %d/%d): %v", attempt, a.maxAttempts, err)
			lastErr = err
			continue
		}
		metrics.ObserveProviderCall(a.provider.Name(), "ok", time.Since(started))

		items, err := a.validator.Validate(raw)
		if err != nil {
			log.Printf("analysis: invalid response (attempt %d/%d): %v", attempt, a.maxAttempts, err)
			lastErr = err
			continue
		}

		return items
	}

	metrics.IncrementChunksExhausted()
	span.SetError(lastErr)
	telemetry.CaptureError(ctx, lastErr)
	log.Printf("analysis: chunk at offset %d abandoned after %d attempts: %v", chunk.Start, a.maxAttempts, lastErr)
	return nil
}
