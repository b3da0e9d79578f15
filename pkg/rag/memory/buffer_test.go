package memory

import (
	"strings"
	"testing"

	"docchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

// one token per word keeps the arithmetic readable
func words(text string) int {
	return len(strings.Fields(text))
}

func user(s string) llm.Message      { return llm.Message{Role: llm.RoleUser, Content: s} }
func assistant(s string) llm.Message { return llm.Message{Role: llm.RoleAssistant, Content: s} }

func TestPutKeepsEverythingUnderLimit(t *testing.T) {
	b := NewBuffer(100, words)
	b.Put(user("hello there"), assistant("hi how can I help"))

	assert.Equal(t, 7, b.TokenCount())
	assert.Len(t, b.Messages(), 2)
}

func TestPutDropsOldestTurns(t *testing.T) {
	b := NewBuffer(10, words)
	b.Put(user("one two three"), assistant("four five six"))
	b.Put(user("seven eight"), assistant("nine ten eleven"))

	msgs := b.Messages()
	assert.Equal(t, []llm.Message{user("seven eight"), assistant("nine ten eleven")}, msgs)
	assert.LessOrEqual(t, b.TokenCount(), 10)
}

func TestPutNeverStartsWithAssistant(t *testing.T) {
	b := NewBuffer(6, words)
	b.Put(user("a b c"), assistant("d e"))
	b.Put(user("f g"))

	// dropping "a b c" alone would leave the assistant reply first
	assert.Equal(t, []llm.Message{user("f g")}, b.Messages())
}

func TestWindowReservesTokens(t *testing.T) {
	b := NewBuffer(20, words)
	b.Put(user("a b c d"), assistant("e f g h"), user("i j"), assistant("k l m"))

	assert.Len(t, b.Window(0), 4)

	w := b.Window(10)
	assert.Equal(t, []llm.Message{user("i j"), assistant("k l m")}, w)

	assert.Empty(t, b.Window(20))
	assert.Len(t, b.Messages(), 4)
}

func TestReset(t *testing.T) {
	b := NewBuffer(0, nil)
	assert.Equal(t, DefaultTokenLimit, b.TokenLimit())

	b.Put(user("hello"))
	b.Reset()
	assert.Empty(t, b.Messages())
	assert.Zero(t, b.TokenCount())
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 2, EstimateTokens("สวัสดี"))
}
