package llm

import (
	"context"
	"sync"
)

// StaticProvider answers every prompt with the same reply and records what it
// was sent. It backs dry runs and tests.
type StaticProvider struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls [][]Message
}

var _ LLMProvider = &StaticProvider{}

func NewStaticProvider(reply string) *StaticProvider {
	return &StaticProvider{Reply: reply}
}

func (s *StaticProvider) Chat(ctx context.Context, history []Message, _ ...Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	cp := make([]Message, len(history))
	copy(cp, history)
	s.calls = append(s.calls, cp)
	s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}

func (s *StaticProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return s.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts...)
}

// Calls returns the histories received so far.
func (s *StaticProvider) Calls() [][]Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Message, len(s.calls))
	copy(out, s.calls)
	return out
}
