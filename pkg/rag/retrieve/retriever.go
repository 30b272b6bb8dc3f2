package retrieve

import (
	"context"
	"log"

	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/embedding"
	"ai-docqa-be/pkg/rag/state"
	"ai-docqa-be/pkg/rerank"
)

// SearchResult is one nearest-neighbor hit from the vector index.
type SearchResult struct {
	Content     string
	Source      string
	Page        int
	ChunkID     string
	ContentType string
	Similarity  float64
}

// Index is the similarity-search contract this system depends on.
// The gorm/pgvector repository satisfies it; tests substitute a fake.
type Index interface {
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]SearchResult, error)
}

// Config encapsulates retrieval parameters.
type Config struct {
	// TopK is the nearest-neighbor fetch size. Smaller K trades recall
	// for lower memory and latency.
	TopK int
	// TopN is the post-rerank truncation, always < TopK.
	TopN int
}

// DefaultConfig mirrors the retrieval defaults: fetch 15, keep 3.
func DefaultConfig() Config {
	return Config{TopK: 15, TopN: 3}
}

// Retriever composes the vector lookup with the reranking scorer:
// embed the query, fetch top-K by similarity, rerank all K, keep top-N.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	index             Index
	scorer            rerank.Scorer
	config            Config
	logger            *log.Logger
}

func NewRetriever(
	embeddingProvider embedding.EmbeddingProvider,
	index Index,
	scorer rerank.Scorer,
	config Config,
	logger *log.Logger,
) *Retriever {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	if config.TopN <= 0 || config.TopN > config.TopK {
		config.TopN = DefaultConfig().TopN
	}
	return &Retriever{
		embeddingProvider: embeddingProvider,
		index:             index,
		scorer:            scorer,
		config:            config,
		logger:            logger,
	}
}

// Retrieve runs one retrieval cycle for the given query. A dry index is
// not an error: zero candidates come back as an empty slice and the
// workflow treats that as a missing_docs failure.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]state.Evidence, error) {
	embeddingRes, err := r.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, apperr.Upstream("embedding.query", err)
	}

	hits, err := r.index.Search(ctx, embeddingRes.Embedding.Values, r.config.TopK)
	if err != nil {
		return nil, apperr.Upstream("vector.search", err)
	}
	if len(hits) == 0 {
		r.logger.Printf("[RETRIEVE] Index returned zero candidates for query")
		return []state.Evidence{}, nil
	}

	candidates := make([]rerank.Candidate, len(hits))
	for i, hit := range hits {
		candidates[i] = rerank.Candidate{
			ID:      hit.ChunkID,
			Content: hit.Content,
			Score:   hit.Similarity,
		}
	}

	// Scoring is CPU-bound; the scorer dispatches it onto its own workers.
	scored, err := r.scorer.Score(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	bySimRank := make(map[string]SearchResult, len(hits))
	for _, hit := range hits {
		bySimRank[hit.ChunkID] = hit
	}

	limit := r.config.TopN
	if limit > len(scored) {
		limit = len(scored)
	}

	docs := make([]state.Evidence, 0, limit)
	for _, sc := range scored[:limit] {
		hit := bySimRank[sc.Candidate.ID]
		docs = append(docs, state.Evidence{
			Content:     hit.Content,
			Source:      hit.Source,
			Page:        hit.Page,
			ChunkID:     hit.ChunkID,
			ContentType: hit.ContentType,
			Score:       sc.Relevance,
		})
	}

	r.logger.Printf("[RETRIEVE] %d candidates reranked, kept %d", len(hits), len(docs))
	return docs, nil
}
