// Package memory keeps the bounded conversation history of a chat session.
package memory

import (
	"sync"

	"docchat-be/pkg/llm"
)

const DefaultTokenLimit = 15000

// Buffer holds user and assistant messages within a token budget. The
// oldest messages are dropped first and the retained history never begins
// with an assistant message.
type Buffer struct {
	mu         sync.Mutex
	tokenLimit int
	count      TokenCounter
	messages   []llm.Message
	tokens     []int
}

func NewBuffer(tokenLimit int, counter TokenCounter) *Buffer {
	if tokenLimit <= 0 {
		tokenLimit = DefaultTokenLimit
	}
	if counter == nil {
		counter = EstimateTokens
	}
	return &Buffer{tokenLimit: tokenLimit, count: counter}
}

func (b *Buffer) TokenLimit() int {
	return b.tokenLimit
}

func (b *Buffer) Put(msgs ...llm.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, m := range msgs {
		b.messages = append(b.messages, m)
		b.tokens = append(b.tokens, b.count(m.Content))
	}

	total := sum(b.tokens)
	drop := 0
	for drop < len(b.messages) && total > b.tokenLimit {
		total -= b.tokens[drop]
		drop++
	}
	for drop < len(b.messages) && b.messages[drop].Role == llm.RoleAssistant {
		drop++
	}
	b.messages = b.messages[drop:]
	b.tokens = b.tokens[drop:]
}

// Messages returns a copy of everything currently retained.
func (b *Buffer) Messages() []llm.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]llm.Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// Window returns the newest messages that fit in the limit after reserving
// reserved tokens for the prompt sent alongside them.
func (b *Buffer) Window(reserved int) []llm.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	budget := b.tokenLimit - reserved
	start := len(b.messages)
	used := 0
	for start > 0 && used+b.tokens[start-1] <= budget {
		start--
		used += b.tokens[start]
	}
	for start < len(b.messages) && b.messages[start].Role == llm.RoleAssistant {
		start++
	}

	out := make([]llm.Message, len(b.messages)-start)
	copy(out, b.messages[start:])
	return out
}

func (b *Buffer) TokenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sum(b.tokens)
}

// Count exposes the buffer's tokenizer to prompt builders.
func (b *Buffer) Count(text string) int {
	return b.count(text)
}

func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = nil
	b.tokens = nil
}

func sum(v []int) int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}
