package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshal(t *testing.T) {
	e := New("CHAT_REPLIED", map[string]interface{}{"session_id": "abc", "sources": 2})

	data, err := Marshal(e)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "CHAT_REPLIED", got.EventType())
	assert.Equal(t, "abc", got.String("session_id"))
	assert.Equal(t, float64(2), got.Payload()["sources"])
	assert.True(t, e.Timestamp().Equal(got.Timestamp()))
	assert.Empty(t, got.String("missing"))
}
