package pgstore

import (
	"context"
	"testing"

	"docchat-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
)

func TestChunkModelRoundTrip(t *testing.T) {
	c := vectorstore.Chunk{ID: "id-1", DocumentID: "doc-1", Source: "faq.txt", Title: "faq", Index: 3, Text: "hello"}

	m := toModel(c, []float32{0.1, 0.2})
	assert.Equal(t, "document_chunks", m.TableName())
	assert.Equal(t, []float32{0.1, 0.2}, m.EmbeddingValue.Slice())
	assert.Equal(t, c, toChunk(m))
}

func TestUpsertLengthMismatch(t *testing.T) {
	s := NewStore(nil)
	err := s.Upsert(context.Background(), []vectorstore.Chunk{{ID: "a"}}, nil)
	assert.ErrorIs(t, err, vectorstore.ErrLengthMismatch)
}
