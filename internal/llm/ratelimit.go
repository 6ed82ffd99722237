package llm

import (
	"context"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit caps outbound request throughput to the wrapped provider. The
// burst of one keeps requests evenly spaced rather than front-loaded.
func WithRateLimit(p Provider, requestsPerMinute int) Provider {
	return &rateLimited{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

func (r *rateLimited) Name() string { return r.inner.Name() }

func (r *rateLimited) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Complete(ctx, systemPrompt, userPrompt, opts)
}
