package vectorindex

import (
	"context"

	"ai-docqa-be/internal/repository/contract"
	"ai-docqa-be/pkg/rag/retrieve"
)

// Adapter exposes the document chunk repository as the retrieval index
// the workflow searches against.
type Adapter struct {
	repository contract.DocumentChunkRepository
}

func NewAdapter(repository contract.DocumentChunkRepository) *Adapter {
	return &Adapter{repository: repository}
}

var _ retrieve.Index = &Adapter{}

func (a *Adapter) Search(ctx context.Context, queryEmbedding []float32, k int) ([]retrieve.SearchResult, error) {
	scored, err := a.repository.SearchSimilarWithScore(ctx, queryEmbedding, k)
	if err != nil {
		return nil, err
	}

	results := make([]retrieve.SearchResult, 0, len(scored))
	for _, s := range scored {
		if s.Chunk == nil {
			continue
		}
		results = append(results, retrieve.SearchResult{
			Content:     s.Chunk.Content,
			Source:      s.Chunk.Source,
			Page:        s.Chunk.Page,
			ChunkID:     s.Chunk.ChunkId,
			ContentType: s.Chunk.ContentType,
			Similarity:  s.Similarity,
		})
	}
	return results, nil
}
