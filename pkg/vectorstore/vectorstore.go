// Package vectorstore holds embedded chunks and answers nearest-neighbour queries.
package vectorstore

import (
	"context"
	"errors"
)

var (
	ErrLengthMismatch    = errors.New("chunks and vectors length mismatch")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Chunk is a slice of a source document as stored in the index.
type Chunk struct {
	ID         string
	DocumentID string
	Source     string
	Title      string
	Index      int
	Text       string
}

type SearchResult struct {
	Chunk Chunk
	Score float64
}

type VectorStore interface {
	// Reset drops every stored chunk. Builders call it before a fresh load.
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	// Search returns at most topK results ordered by descending similarity.
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
}
