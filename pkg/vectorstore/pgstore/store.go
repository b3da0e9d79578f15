// Package pgstore keeps index chunks in Postgres using the pgvector extension.
package pgstore

import (
	"context"

	"docchat-be/internal/model"
	"docchat-be/pkg/vectorstore"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 100

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Reset truncates the table. Each process rebuilds the index from disk.
func (s *Store) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.DocumentChunk{}).Error
}

func (s *Store) Upsert(ctx context.Context, chunks []vectorstore.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return vectorstore.ErrLengthMismatch
	}
	if len(chunks) == 0 {
		return nil
	}

	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = toModel(c, vectors[i])
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document_id", "source", "title", "chunk_index", "content", "embedding_value"}),
		}).
		CreateInBatches(models, insertBatchSize).Error
}

func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	// pgvector cosine distance is 1 - cosine_similarity
	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)
	err := s.db.WithContext(ctx).
		Table(model.DocumentChunk{}.TableName()).
		Select("document_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	out := make([]vectorstore.SearchResult, len(results))
	for i, r := range results {
		out[i] = vectorstore.SearchResult{Chunk: toChunk(&r.DocumentChunk), Score: r.Similarity}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.DocumentChunk{}).Count(&count).Error
	return int(count), err
}

func toModel(c vectorstore.Chunk, vector []float32) *model.DocumentChunk {
	return &model.DocumentChunk{
		Id:             c.ID,
		DocumentId:     c.DocumentID,
		Source:         c.Source,
		Title:          c.Title,
		ChunkIndex:     c.Index,
		Content:        c.Text,
		EmbeddingValue: pgvector.NewVector(vector),
	}
}

func toChunk(m *model.DocumentChunk) vectorstore.Chunk {
	return vectorstore.Chunk{
		ID:         m.Id,
		DocumentID: m.DocumentId,
		Source:     m.Source,
		Title:      m.Title,
		Index:      m.ChunkIndex,
		Text:       m.Content,
	}
}
