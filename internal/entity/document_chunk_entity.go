package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Content        string
	Source         string
	Page           int
	ChunkIndex     int
	ChunkId        string
	ContentType    string
	Metadata       map[string]interface{}
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// SourceSummary aggregates one ingested document for listing.
type SourceSummary struct {
	Source     string
	ChunkCount int
	Pages      int
	IngestedAt time.Time
}
