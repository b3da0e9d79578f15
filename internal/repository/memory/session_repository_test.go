package memory

import (
	"testing"
	"time"

	"docchat-be/pkg/chat"
	ragmemory "docchat-be/pkg/rag/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveGetDelete(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	s := chat.NewSession("abc", "hello", ragmemory.NewBuffer(100, nil))

	repo.Save(s)
	got, ok := repo.Get("abc")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, repo.Count())

	assert.True(t, repo.Delete("abc"))
	assert.False(t, repo.Delete("abc"))
	_, ok = repo.Get("abc")
	assert.False(t, ok)
}

func TestSessionsExpire(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	repo.Save(chat.NewSession("abc", "hello", nil))

	time.Sleep(40 * time.Millisecond)
	_, ok := repo.Get("abc")
	assert.False(t, ok)
}

func TestGetDoesNotExtendLifetime(t *testing.T) {
	repo := NewSessionRepository(60 * time.Millisecond)
	repo.Save(chat.NewSession("abc", "hello", nil))

	time.Sleep(40 * time.Millisecond)
	_, ok := repo.Get("abc")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = repo.Get("abc")
	assert.False(t, ok)
}
