package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/internal/config"
	"ai-docqa-be/internal/entity"
	"ai-docqa-be/internal/repository/contract"
	"ai-docqa-be/internal/repository/specification"
	"ai-docqa-be/internal/repository/unitofwork"
	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/embedding"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5, 0.5}},
	}, nil
}

func newTestIngestionService(embedder embedding.EmbeddingProvider) *ingestionService {
	return &ingestionService{
		embeddingProvider: embedder,
		ingestCfg: config.IngestConfig{
			ChunkSize:     100,
			ChunkOverlap:  10,
			MaxFileSizeMB: 1,
		},
		logger: nopLogger{},
	}
}

func fileHeader(name, contentType string, size int64) *multipart.FileHeader {
	h := &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{},
	}
	if contentType != "" {
		h.Header.Set("Content-Type", contentType)
	}
	return h
}

func TestValidateUpload(t *testing.T) {
	s := newTestIngestionService(&stubEmbedder{})

	cases := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr string
	}{
		{"missing file", nil, "file is required"},
		{"wrong extension", fileHeader("report.docx", "application/pdf", 100), "only .pdf"},
		{"wrong content type", fileHeader("report.pdf", "text/plain", 100), "unexpected content type"},
		{"oversized", fileHeader("report.pdf", "application/pdf", 2*1024*1024), "maximum size"},
		{"valid", fileHeader("report.pdf", "application/pdf", 100), ""},
		{"uppercase extension is fine", fileHeader("REPORT.PDF", "application/pdf", 100), ""},
		{"missing content type is tolerated", fileHeader("report.pdf", "", 100), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.validateUpload(tc.file)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestBuildChunks_DeterministicIDsAndPages(t *testing.T) {
	embedder := &stubEmbedder{}
	s := newTestIngestionService(embedder)

	pages := []string{
		"first page content",
		"", // blank pages keep their number but yield no chunks
		strings.Repeat("third page words ", 20),
	}

	chunks, err := s.buildChunks("manual.pdf", pages)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	assert.Equal(t, "manual.pdf_p1_c0", chunks[0].ChunkId)
	assert.Equal(t, 1, chunks[0].Page)

	// the blank second page must not shift numbering
	for _, c := range chunks[1:] {
		assert.Equal(t, 3, c.Page)
	}
	assert.Equal(t, "manual.pdf_p3_c0", chunks[1].ChunkId)
	if len(chunks) > 2 {
		assert.Equal(t, "manual.pdf_p3_c1", chunks[2].ChunkId)
	}

	for _, c := range chunks {
		assert.Equal(t, "manual.pdf", c.Source)
		assert.Equal(t, "text", c.ContentType)
		assert.NotEmpty(t, c.EmbeddingValue)
	}
	assert.Equal(t, len(chunks), embedder.calls)
}

func TestBuildChunks_EmbeddingFailureIsUpstream(t *testing.T) {
	s := newTestIngestionService(&stubEmbedder{err: fmt.Errorf("model offline")})

	_, err := s.buildChunks("manual.pdf", []string{"some text"})
	require.Error(t, err)
	assert.True(t, apperr.IsUpstream(err))
}

func TestBuildChunks_NoExtractableText(t *testing.T) {
	s := newTestIngestionService(&stubEmbedder{})

	_, err := s.buildChunks("scanned.pdf", []string{"", "   ", "\n"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

type fakeChunkRepo struct {
	counts   []int64
	countIdx int
	found    []*entity.DocumentChunk
	one      *entity.DocumentChunk
	gotSpecs [][]specification.Specification
}

func (f *fakeChunkRepo) Create(context.Context, *entity.DocumentChunk) error        { return nil }
func (f *fakeChunkRepo) CreateBulk(context.Context, []*entity.DocumentChunk) error  { return nil }
func (f *fakeChunkRepo) Update(context.Context, *entity.DocumentChunk) error        { return nil }
func (f *fakeChunkRepo) Delete(context.Context, uuid.UUID) error                    { return nil }
func (f *fakeChunkRepo) DeleteBySource(context.Context, string) (int64, error)      { return 0, nil }
func (f *fakeChunkRepo) ListSources(context.Context) ([]*entity.SourceSummary, error) {
	return nil, nil
}
func (f *fakeChunkRepo) SearchSimilarWithScore(context.Context, []float32, int) ([]*contract.ScoredDocumentChunk, error) {
	return nil, nil
}

func (f *fakeChunkRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	f.gotSpecs = append(f.gotSpecs, specs)
	return f.one, nil
}

func (f *fakeChunkRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	f.gotSpecs = append(f.gotSpecs, specs)
	return f.found, nil
}

func (f *fakeChunkRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	f.gotSpecs = append(f.gotSpecs, specs)
	if f.countIdx >= len(f.counts) {
		return 0, nil
	}
	n := f.counts[f.countIdx]
	f.countIdx++
	return n, nil
}

type fakeUnitOfWork struct {
	repo contract.DocumentChunkRepository
}

func (f *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error               { return nil }
func (f *fakeUnitOfWork) Rollback() error             { return nil }
func (f *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return f.repo
}

type fakeUowFactory struct {
	repo contract.DocumentChunkRepository
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo}
}

func newChunkQueryService(repo *fakeChunkRepo) *ingestionService {
	return &ingestionService{
		uowFactory: &fakeUowFactory{repo: repo},
		logger:     nopLogger{},
	}
}

func TestListChunks_UnknownSourceRejected(t *testing.T) {
	repo := &fakeChunkRepo{counts: []int64{0}}
	s := newChunkQueryService(repo)

	_, err := s.ListChunks(context.Background(), "missing.pdf", 0, 0, 0)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestListChunks_PageFilterAndPagination(t *testing.T) {
	repo := &fakeChunkRepo{
		counts: []int64{9, 4},
		found: []*entity.DocumentChunk{
			{ChunkId: "doc.pdf_p2_c0", Source: "doc.pdf", Page: 2, Content: "first"},
			{ChunkId: "doc.pdf_p2_c1", Source: "doc.pdf", Page: 2, ChunkIndex: 1, Content: "second"},
		},
	}
	s := newChunkQueryService(repo)

	res, err := s.ListChunks(context.Background(), "doc.pdf", 2, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(4), res.Total)
	assert.Equal(t, 50, res.Limit)
	require.Len(t, res.Chunks, 2)
	assert.Equal(t, "doc.pdf_p2_c0", res.Chunks[0].ChunkId)

	// The FindAll call carries source, page, ordering and pagination specs.
	findSpecs := repo.gotSpecs[len(repo.gotSpecs)-1]
	require.Len(t, findSpecs, 4)
	assert.Equal(t, specification.BySource{Source: "doc.pdf"}, findSpecs[0])
	assert.Equal(t, specification.ByPage{Page: 2}, findSpecs[1])
	assert.Equal(t, specification.OrderByChunkPosition{}, findSpecs[2])
	assert.Equal(t, specification.Pagination{Limit: 50, Offset: 0}, findSpecs[3])
}

func TestListChunks_LimitIsClamped(t *testing.T) {
	repo := &fakeChunkRepo{counts: []int64{10}}
	s := newChunkQueryService(repo)

	res, err := s.ListChunks(context.Background(), "doc.pdf", 0, 5000, -3)
	require.NoError(t, err)

	assert.Equal(t, 200, res.Limit)
	assert.Equal(t, 0, res.Offset)
	findSpecs := repo.gotSpecs[len(repo.gotSpecs)-1]
	assert.Contains(t, findSpecs, specification.Pagination{Limit: 200, Offset: 0})
}

func TestGetChunk_ByChunkId(t *testing.T) {
	repo := &fakeChunkRepo{
		one: &entity.DocumentChunk{ChunkId: "doc.pdf_p1_c0", Source: "doc.pdf", Page: 1, Content: "body"},
	}
	s := newChunkQueryService(repo)

	res, err := s.GetChunk(context.Background(), "doc.pdf_p1_c0")
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf_p1_c0", res.ChunkId)
	assert.Equal(t, "body", res.Content)

	require.Len(t, repo.gotSpecs, 1)
	assert.Equal(t, []specification.Specification{specification.ByChunkId{ChunkId: "doc.pdf_p1_c0"}}, repo.gotSpecs[0])
}

func TestGetChunk_UnknownIdRejected(t *testing.T) {
	s := newChunkQueryService(&fakeChunkRepo{})

	_, err := s.GetChunk(context.Background(), "nope_p1_c0")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}
