package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type DocumentChunk struct {
	Id             string          `gorm:"type:varchar(64);primaryKey"`
	DocumentId     string          `gorm:"type:varchar(64);not null;index"`
	Source         string          `gorm:"type:text;not null"`
	Title          string          `gorm:"type:text"`
	ChunkIndex     int             `gorm:"default:0"` // 0-based position within the document
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimension
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
