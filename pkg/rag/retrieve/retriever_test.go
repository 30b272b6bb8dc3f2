package retrieve

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/embedding"
	"ai-docqa-be/pkg/rerank"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeIndex struct {
	hits []SearchResult
	err  error
	gotK int
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, k int) ([]SearchResult, error) {
	f.gotK = k
	return f.hits, f.err
}

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRetrieveRerankAndTruncate(t *testing.T) {
	index := &fakeIndex{hits: []SearchResult{
		{ChunkID: "a_p1_c0", Content: "completely unrelated cooking recipe", Source: "a.pdf", Page: 1, Similarity: 0.9},
		{ChunkID: "b_p2_c0", Content: "Q3 revenue grew fifteen percent", Source: "b.pdf", Page: 2, Similarity: 0.8},
		{ChunkID: "c_p3_c0", Content: "revenue footnotes and Q3 details", Source: "c.pdf", Page: 3, Similarity: 0.7},
		{ChunkID: "d_p4_c0", Content: "gardening tips for spring", Source: "d.pdf", Page: 4, Similarity: 0.6},
	}}

	r := NewRetriever(&fakeEmbedder{}, index, rerank.NewLexicalScorer(2), Config{TopK: 4, TopN: 2}, silentLogger())

	docs, err := r.Retrieve(context.Background(), "Q3 revenue")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, 4, index.gotK)
	// Reranker promotes the revenue chunks over the higher-similarity noise
	assert.Equal(t, "b_p2_c0", docs[0].ChunkID)
	assert.Equal(t, "c_p3_c0", docs[1].ChunkID)
	assert.Equal(t, "b.pdf", docs[0].Source)
	assert.Equal(t, 2, docs[0].Page)
}

func TestRetrieveEmptyIndexIsNotAnError(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeIndex{}, rerank.NewLexicalScorer(1), DefaultConfig(), silentLogger())

	docs, err := r.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRetrieveEmbeddingFailureIsUpstream(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{err: errors.New("embedder down")}, &fakeIndex{}, rerank.NewLexicalScorer(1), DefaultConfig(), silentLogger())

	_, err := r.Retrieve(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, apperr.IsUpstream(err))
}

func TestRetrieveIndexFailureIsUpstream(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeIndex{err: errors.New("pg down")}, rerank.NewLexicalScorer(1), DefaultConfig(), silentLogger())

	_, err := r.Retrieve(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, apperr.IsUpstream(err))
}

func TestConfigDefaultsApplied(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeIndex{}, rerank.NewLexicalScorer(1), Config{}, silentLogger())
	assert.Equal(t, 15, r.config.TopK)
	assert.Equal(t, 3, r.config.TopN)
}
