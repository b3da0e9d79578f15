package service

import (
	"context"

	"docchat-be/internal/dto"
	"docchat-be/pkg/rag/index"
)

type IIndexService interface {
	GetIndexStatus(ctx context.Context) (*dto.IndexStatusResponse, error)
}

type indexService struct {
	index       *index.Index
	vectorStore string
	dataDir     string
}

func NewIndexService(idx *index.Index, vectorStore, dataDir string) IIndexService {
	return &indexService{index: idx, vectorStore: vectorStore, dataDir: dataDir}
}

func (s *indexService) GetIndexStatus(ctx context.Context) (*dto.IndexStatusResponse, error) {
	if s.index == nil {
		return nil, ErrIndexNotReady
	}
	stats := s.index.Stats()
	return &dto.IndexStatusResponse{
		Ready:           true,
		Documents:       stats.Documents,
		Chunks:          stats.Chunks,
		VectorStore:     s.vectorStore,
		DataDir:         s.dataDir,
		BuiltAt:         stats.BuiltAt,
		BuildDurationMs: stats.BuildDuration.Milliseconds(),
	}, nil
}
