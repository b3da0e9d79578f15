package chat

import (
	"fmt"
	"sync"
	"testing"

	"docchat-be/pkg/llm"
	"docchat-be/pkg/rag/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeting = "สวัสดีครับ กอช.ยินดีให้บริการครับ"

func newSession() *Session {
	return NewSession("s1", greeting, memory.NewBuffer(100, nil))
}

func TestNewSessionStartsWithGreeting(t *testing.T) {
	s := newSession()

	assert.Equal(t, StateAwaitingInput, s.State())
	msgs := s.Render()
	require.Len(t, msgs, 1)
	assert.Equal(t, llm.RoleAssistant, msgs[0].Role)
	assert.Equal(t, greeting, msgs[0].Content)
}

func TestTurnsAlternateAfterGreeting(t *testing.T) {
	s := newSession()

	const turns = 4
	for i := 0; i < turns; i++ {
		require.NoError(t, s.Begin(fmt.Sprintf("question %d", i)))
		assert.Equal(t, StateProcessing, s.State())
		require.NoError(t, s.Complete(fmt.Sprintf("answer %d", i), nil))
		assert.Equal(t, StateDoneForTurn, s.State())
		s.Render()
		assert.Equal(t, StateAwaitingInput, s.State())
	}

	msgs := s.Render()
	require.Len(t, msgs, 2*turns+1)
	assert.Equal(t, greeting, msgs[0].Content)
	for i := 1; i < len(msgs); i += 2 {
		assert.Equal(t, llm.RoleUser, msgs[i].Role)
		assert.Equal(t, llm.RoleAssistant, msgs[i+1].Role)
	}
}

func TestBeginWhileProcessing(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Begin("first"))

	assert.ErrorIs(t, s.Begin("second"), ErrTurnInProgress)
	assert.Len(t, s.Render(), 2)
}

func TestBeginFromDoneForTurn(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Begin("first"))
	require.NoError(t, s.Complete("ok", nil))

	require.NoError(t, s.Begin("second"))
	assert.Len(t, s.Render(), 4)
}

func TestAbortRestoresTranscript(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Begin("will fail"))

	pending, ok := s.PendingInput()
	assert.True(t, ok)
	assert.Equal(t, "will fail", pending)

	require.NoError(t, s.Abort())
	assert.Equal(t, StateAwaitingInput, s.State())
	assert.Len(t, s.Render(), 1)

	_, ok = s.PendingInput()
	assert.False(t, ok)
}

func TestCompleteAndAbortNeedATurn(t *testing.T) {
	s := newSession()
	assert.ErrorIs(t, s.Complete("x", nil), ErrNoTurnInProgress)
	assert.ErrorIs(t, s.Abort(), ErrNoTurnInProgress)
}

func TestBeginRejectsEmptyInput(t *testing.T) {
	s := newSession()
	assert.ErrorIs(t, s.Begin(""), ErrEmptyMessage)
	assert.Equal(t, StateAwaitingInput, s.State())
}

func TestBeginAcceptsWhitespaceInput(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Begin("   "))
	assert.Equal(t, StateProcessing, s.State())
	assert.Equal(t, "   ", s.Render()[1].Content)
}

func TestConcurrentBeginAdmitsOneTurn(t *testing.T) {
	s := newSession()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Begin("hi") == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
}
