// Package chat drives a single conversation: the visible transcript, the turn
// state and the memory handed to the chat engine.
package chat

import (
	"errors"
	"sync"
	"time"

	"docchat-be/pkg/llm"
	"docchat-be/pkg/rag/engine"
	"docchat-be/pkg/rag/memory"
)

const (
	StateNoSession     = "NO_SESSION"
	StateAwaitingInput = "AWAITING_INPUT"
	StateProcessing    = "PROCESSING"
	StateDoneForTurn   = "DONE_FOR_TURN"
)

var (
	ErrTurnInProgress   = errors.New("a turn is already being processed")
	ErrNoTurnInProgress = errors.New("no turn is being processed")
	ErrEmptyMessage     = errors.New("message is empty")
)

type Message struct {
	Role      string
	Content   string
	Sources   []engine.Source
	CreatedAt time.Time
}

// Session is safe for concurrent use. Transcript messages are only appended,
// except that an aborted turn withdraws its own pending user message.
type Session struct {
	ID        string
	CreatedAt time.Time
	Memory    *memory.Buffer

	mu        sync.Mutex
	state     string
	messages  []Message
	updatedAt time.Time
}

// NewSession starts a conversation whose transcript opens with greeting.
func NewSession(id, greeting string, mem *memory.Buffer) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		Memory:    mem,
		state:     StateAwaitingInput,
		messages: []Message{
			{Role: llm.RoleAssistant, Content: greeting, CreatedAt: now},
		},
		updatedAt: now,
	}
}

func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Begin records the user's input and moves the session to processing.
func (s *Session) Begin(content string) error {
	if content == "" {
		return ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateProcessing {
		return ErrTurnInProgress
	}
	s.messages = append(s.messages, Message{Role: llm.RoleUser, Content: content, CreatedAt: time.Now()})
	s.state = StateProcessing
	s.updatedAt = time.Now()
	return nil
}

// Complete appends the assistant's answer to the pending turn.
func (s *Session) Complete(answer string, sources []engine.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateProcessing {
		return ErrNoTurnInProgress
	}
	s.messages = append(s.messages, Message{Role: llm.RoleAssistant, Content: answer, Sources: sources, CreatedAt: time.Now()})
	s.state = StateDoneForTurn
	s.updatedAt = time.Now()
	return nil
}

// Abort drops the pending user message and returns to awaiting input.
func (s *Session) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateProcessing {
		return ErrNoTurnInProgress
	}
	if n := len(s.messages); n > 0 && s.messages[n-1].Role == llm.RoleUser {
		s.messages = s.messages[:n-1]
	}
	s.state = StateAwaitingInput
	s.updatedAt = time.Now()
	return nil
}

// Render returns the transcript. A finished turn returns the session to
// awaiting input.
func (s *Session) Render() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDoneForTurn {
		s.state = StateAwaitingInput
	}
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// PendingInput returns the user message of the turn being processed.
func (s *Session) PendingInput() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateProcessing || len(s.messages) == 0 {
		return "", false
	}
	return s.messages[len(s.messages)-1].Content, true
}
