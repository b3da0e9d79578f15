package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"docchat-be/pkg/vectorstore"
)

// Store is an in-memory vector store using brute-force cosine similarity.
type Store struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	norms     []float64
	chunks    []vectorstore.Chunk
	byID      map[string]int
}

func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = 0
	s.vectors = nil
	s.norms = nil
	s.chunks = nil
	s.byID = make(map[string]int)
	return nil
}

// Upsert replaces chunks whose ID is already stored and appends the rest.
// The first vector written fixes the store dimension.
func (s *Store) Upsert(ctx context.Context, chunks []vectorstore.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return vectorstore.ErrLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimension
	for _, v := range vectors {
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim || dim == 0 {
			return vectorstore.ErrDimensionMismatch
		}
	}
	s.dimension = dim

	for i, c := range chunks {
		if j, ok := s.byID[c.ID]; ok && c.ID != "" {
			s.chunks[j] = c
			s.vectors[j] = vectors[i]
			s.norms[j] = norm(vectors[i])
			continue
		}
		s.byID[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, c)
		s.vectors = append(s.vectors, vectors[i])
		s.norms = append(s.norms, norm(vectors[i]))
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}
	if len(s.vectors) == 0 {
		return []vectorstore.SearchResult{}, nil
	}
	if len(vector) != s.dimension {
		return nil, vectorstore.ErrDimensionMismatch
	}

	qNorm := norm(vector)
	results := make([]vectorstore.SearchResult, len(s.vectors))
	for i, v := range s.vectors {
		score := 0.0
		if qNorm > 0 && s.norms[i] > 0 {
			score = dot(v, vector) / (qNorm * s.norms[i])
		}
		results[i] = vectorstore.SearchResult{Chunk: s.chunks[i], Score: score}
	}

	// ties keep insertion order so retrieval is deterministic
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
