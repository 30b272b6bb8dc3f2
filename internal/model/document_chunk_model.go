package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content        string          `gorm:"type:text"`
	Source         string          `gorm:"type:varchar(512);not null;index"` // original filename
	Page           int             `gorm:"not null"`                         // 1-based page number
	ChunkIndex     int             `gorm:"default:0"`                        // 0-based within a page
	ChunkId        string          `gorm:"type:varchar(768);uniqueIndex"`    // <filename>_p<page>_c<idx>
	ContentType    string          `gorm:"type:varchar(64);default:'text'"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-004 use 768 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
