package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchlabs/clauseguard/internal/llm"
)

// scriptedProvider returns its responses in order, repeating the last one.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
	opts      []llm.Options
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Complete(_ context.Context, _ string, userPrompt string, opts llm.Options) (string, error) {
	i := s.calls
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	s.calls++
	s.prompts = append(s.prompts, userPrompt)
	s.opts = append(s.opts, opts)
	if s.errs != nil && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.responses[i], nil
}

func TestAnalyzeChunk_ValidFirstAttempt(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`[` + validFinding + `]`}}
	a := NewAnalyzer(provider)

	items := a.AnalyzeChunk(context.Background(), Chunk{Text: "some clause text"})

	require.Len(t, items, 1)
	assert.Equal(t, 1, provider.calls)
}

func TestAnalyzeChunk_RecoversOnThirdAttempt(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"not json at all",
		`[{"clause_title": "broken"`,
		`[` + validFinding + `]`,
	}}
	a := NewAnalyzer(provider)

	items := a.AnalyzeChunk(context.Background(), Chunk{Text: "some clause text"})

	require.Len(t, items, 1)
	assert.Equal(t, 3, provider.calls)
}

func TestAnalyzeChunk_RetryPromptCarriesCorrection(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"not json",
		`[]`,
	}}
	a := NewAnalyzer(provider)

	a.AnalyzeChunk(context.Background(), Chunk{Text: "some clause text"})

	require.Len(t, provider.prompts, 2)
	assert.NotContains(t, provider.prompts[0], "invalid JSON")
	assert.Contains(t, provider.prompts[1], "invalid JSON")
}

func TestAnalyzeChunk_ExhaustedAttemptsYieldNoFindings(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"still not json"}}
	a := NewAnalyzer(provider)

	items := a.AnalyzeChunk(context.Background(), Chunk{Text: "some clause text"})

	assert.Empty(t, items)
	assert.Equal(t, DefaultMaxAttempts, provider.calls)
}

func TestAnalyzeChunk_ProviderErrorsCountAgainstBudget(t *testing.T) {
	transient := errors.New("rate limited")
	provider := &scriptedProvider{
		responses: []string{"", "", `[` + validFinding + `]`},
		errs:      []error{transient, transient, nil},
	}
	a := NewAnalyzer(provider)

	items := a.AnalyzeChunk(context.Background(), Chunk{Text: "some clause text"})

	require.Len(t, items, 1)
	assert.Equal(t, 3, provider.calls)
}

func TestAnalyzeChunk_TemperatureIsAlwaysZero(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"nope", `[]`}}
	a := NewAnalyzer(provider, WithMaxOutputTokens(2048))

	a.AnalyzeChunk(context.Background(), Chunk{Text: "some clause text"})

	for _, opts := range provider.opts {
		assert.Equal(t, float32(0), opts.Temperature)
		assert.Equal(t, 2048, opts.MaxOutputTokens)
	}
}

func TestAnalyzeChunk_PromptContainsChunkText(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`[]`}}
	a := NewAnalyzer(provider)
	text := strings.Repeat("the quick brown fox ", 10)

	a.AnalyzeChunk(context.Background(), Chunk{Text: text})

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], text)
}

func TestWithMaxAttempts(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"bad"}}
	a := NewAnalyzer(provider, WithMaxAttempts(5))

	a.AnalyzeChunk(context.Background(), Chunk{Text: "x"})

	assert.Equal(t, 5, provider.calls)
}
