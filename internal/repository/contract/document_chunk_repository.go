package contract

import (
	"context"

	"ai-docqa-be/internal/entity"
	"ai-docqa-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocumentChunk wraps DocumentChunk with its similarity score
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	Update(ctx context.Context, chunk *entity.DocumentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteBySource soft-deletes every chunk of a document and reports
	// how many rows were affected.
	DeleteBySource(ctx context.Context, source string) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// ListSources aggregates live chunks per document.
	ListSources(ctx context.Context) ([]*entity.SourceSummary, error)
	// SearchSimilarWithScore returns the nearest chunks by cosine
	// similarity along with their scores.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredDocumentChunk, error)
}
