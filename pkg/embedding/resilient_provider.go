package embedding

import (
	"context"

	"docchat-be/pkg/llm"

	"golang.org/x/time/rate"
)

// ResilientProvider throttles calls with a token bucket and retries transient
// failures with the same policy as the chat models.
type ResilientProvider struct {
	next    EmbeddingProvider
	limiter *rate.Limiter
	policy  llm.RetryPolicy
}

// NewResilientProvider wraps next. requestsPerSecond <= 0 disables throttling.
func NewResilientProvider(next EmbeddingProvider, requestsPerSecond float64, policy llm.RetryPolicy) *ResilientProvider {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return &ResilientProvider{next: next, limiter: limiter, policy: policy}
}

func (p *ResilientProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	return llm.Do(ctx, p.policy, func(ctx context.Context) (*EmbeddingResponse, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return p.next.Generate(ctx, text, taskType)
	})
}
