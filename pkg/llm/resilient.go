package llm

import (
	"context"
)

// ResilientProvider decorates an LLMProvider with a per-attempt timeout and
// bounded exponential backoff on transient failures.
type ResilientProvider struct {
	next   LLMProvider
	policy RetryPolicy
}

var _ LLMProvider = &ResilientProvider{}

func NewResilientProvider(next LLMProvider, policy RetryPolicy) *ResilientProvider {
	return &ResilientProvider{next: next, policy: policy}
}

func (r *ResilientProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	return Do(ctx, r.policy, func(ctx context.Context) (string, error) {
		return r.next.Chat(ctx, history, opts...)
	})
}

func (r *ResilientProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return Do(ctx, r.policy, func(ctx context.Context) (string, error) {
		return r.next.Generate(ctx, prompt, opts...)
	})
}
