package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-docqa-be/internal/config"
	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/entity"
	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/internal/repository/specification"
	"ai-docqa-be/internal/repository/unitofwork"
	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/embedding"
	"ai-docqa-be/pkg/events"
	pktNats "ai-docqa-be/pkg/nats"
	"ai-docqa-be/pkg/pdfx"
	"ai-docqa-be/pkg/utils"
)

type IIngestionService interface {
	Ingest(ctx context.Context, file *multipart.FileHeader) (*dto.IngestResponse, error)
	Reembed(ctx context.Context, source string) (*dto.ReembedResponse, error)
	DeleteSource(ctx context.Context, source string) (*dto.DeleteSourceResponse, error)
	ListSources(ctx context.Context) ([]*dto.SourceResponse, error)
	ListChunks(ctx context.Context, source string, page, limit, offset int) (*dto.ListChunksResponse, error)
	GetChunk(ctx context.Context, chunkID string) (*dto.ChunkResponse, error)
}

type ingestionService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	publisherService  IPublisherService
	eventPublisher    *pktNats.Publisher
	ingestCfg         config.IngestConfig
	logger            logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	ingestCfg config.IngestConfig,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		publisherService:  publisherService,
		eventPublisher:    eventPublisher,
		ingestCfg:         ingestCfg,
		logger:            log,
	}
}

// Ingest validates, extracts, chunks and embeds one uploaded PDF.
// Re-uploading a filename replaces every chunk of the earlier upload.
func (s *ingestionService) Ingest(ctx context.Context, file *multipart.FileHeader) (*dto.IngestResponse, error) {
	// Validation happens before a single byte of the body is read.
	if err := s.validateUpload(file); err != nil {
		return nil, err
	}

	source := filepath.Base(file.Filename)

	tempPath, cleanup, err := s.saveToTemp(file)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pages, err := pdfx.ExtractPages(tempPath)
	if err != nil {
		return nil, apperr.NewValidationf("unable to parse PDF '%s': %v", source, err)
	}

	s.logger.Info("Ingestion", "PDF extracted", map[string]interface{}{
		"source": source,
		"pages":  len(pages),
	})

	chunks, err := s.buildChunks(source, pages)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Replace semantics: old chunks of the same filename go away first.
	if _, err := uow.DocumentChunkRepository().DeleteBySource(ctx, source); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewDocumentIngested(source, len(pages), len(chunks)))

	s.logger.Info("Ingestion", "Document ingested", map[string]interface{}{
		"source": source,
		"chunks": len(chunks),
	})

	return &dto.IngestResponse{
		Source:      source,
		Pages:       len(pages),
		ChunksAdded: len(chunks),
	}, nil
}

func (s *ingestionService) validateUpload(file *multipart.FileHeader) error {
	if file == nil {
		return apperr.NewValidation("file is required")
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return apperr.NewValidation("only .pdf files are accepted")
	}
	contentType := file.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/pdf" {
		return apperr.NewValidationf("unexpected content type '%s', want application/pdf", contentType)
	}
	maxBytes := int64(s.ingestCfg.MaxFileSizeMB) * 1024 * 1024
	if maxBytes > 0 && file.Size > maxBytes {
		return apperr.NewValidationf("file exceeds maximum size of %d MB", s.ingestCfg.MaxFileSizeMB)
	}
	return nil
}

// saveToTemp spools the upload to disk so the PDF reader can seek.
// The returned cleanup removes the temp file on every exit path.
func (s *ingestionService) saveToTemp(file *multipart.FileHeader) (string, func(), error) {
	src, err := file.Open()
	if err != nil {
		return "", nil, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.ingestCfg.UploadDir, "ingest-*.pdf")
	if err != nil {
		return "", nil, err
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}

	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

func (s *ingestionService) buildChunks(source string, pages []string) ([]*entity.DocumentChunk, error) {
	var chunks []*entity.DocumentChunk

	for pageIdx, pageText := range pages {
		pageNumber := pageIdx + 1 // pages are 1-based everywhere outside the extractor
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		pieces := utils.SplitText(pageText, s.ingestCfg.ChunkSize, s.ingestCfg.ChunkOverlap)
		for chunkIdx, piece := range pieces {
			res, err := s.embeddingProvider.Generate(piece, embedding.TaskRetrievalDocument)
			if err != nil {
				return nil, apperr.Upstream("embedding.document", err)
			}

			chunks = append(chunks, &entity.DocumentChunk{
				Id:             uuid.New(),
				Content:        piece,
				Source:         source,
				Page:           pageNumber,
				ChunkIndex:     chunkIdx,
				ChunkId:        fmt.Sprintf("%s_p%d_c%d", source, pageNumber, chunkIdx),
				ContentType:    "text",
				Metadata:       map[string]interface{}{"char_count": len(piece)},
				EmbeddingValue: res.Embedding.Values,
				CreatedAt:      time.Now(),
			})
		}
	}

	if len(chunks) == 0 {
		return nil, apperr.NewValidationf("document '%s' contains no extractable text", source)
	}
	return chunks, nil
}

// Reembed queues a background re-embedding of every chunk of a source,
// used after switching embedding models.
func (s *ingestionService) Reembed(ctx context.Context, source string) (*dto.ReembedResponse, error) {
	if strings.TrimSpace(source) == "" {
		return nil, apperr.NewValidation("source is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.DocumentChunkRepository().Count(ctx, specification.BySource{Source: source})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.NewValidationf("unknown source '%s'", source)
	}

	payload, err := json.Marshal(dto.PublishReembedMessage{Source: source})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	s.logger.Info("Ingestion", "Re-embed queued", map[string]interface{}{"source": source})
	return &dto.ReembedResponse{Source: source, Queued: true}, nil
}

func (s *ingestionService) DeleteSource(ctx context.Context, source string) (*dto.DeleteSourceResponse, error) {
	if strings.TrimSpace(source) == "" {
		return nil, apperr.NewValidation("source is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	removed, err := uow.DocumentChunkRepository().DeleteBySource(ctx, source)
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, apperr.NewValidationf("unknown source '%s'", source)
	}

	s.publishEvent(ctx, events.NewDocumentDeleted(source, removed))

	return &dto.DeleteSourceResponse{Source: source, ChunksRemoved: removed}, nil
}

func (s *ingestionService) ListSources(ctx context.Context) ([]*dto.SourceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	summaries, err := uow.DocumentChunkRepository().ListSources(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.SourceResponse, len(summaries))
	for i, sum := range summaries {
		out[i] = &dto.SourceResponse{
			Source:     sum.Source,
			ChunkCount: sum.ChunkCount,
			Pages:      sum.Pages,
			IngestedAt: sum.IngestedAt,
		}
	}
	return out, nil
}

// ListChunks pages through the stored chunks of a source in reading
// order, optionally narrowed to a single page of the document.
func (s *ingestionService) ListChunks(ctx context.Context, source string, page, limit, offset int) (*dto.ListChunksResponse, error) {
	if strings.TrimSpace(source) == "" {
		return nil, apperr.NewValidation("source is required")
	}
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.DocumentChunkRepository()

	known, err := repo.Count(ctx, specification.BySource{Source: source})
	if err != nil {
		return nil, err
	}
	if known == 0 {
		return nil, apperr.NewValidationf("unknown source '%s'", source)
	}

	filter := []specification.Specification{specification.BySource{Source: source}}
	total := known
	if page > 0 {
		filter = append(filter, specification.ByPage{Page: page})
		total, err = repo.Count(ctx, filter...)
		if err != nil {
			return nil, err
		}
	}

	chunks, err := repo.FindAll(ctx, append(filter,
		specification.OrderByChunkPosition{},
		specification.Pagination{Limit: limit, Offset: offset},
	)...)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ChunkResponse, len(chunks))
	for i, chunk := range chunks {
		out[i] = toChunkResponse(chunk)
	}
	return &dto.ListChunksResponse{
		Source: source,
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Chunks: out,
	}, nil
}

func (s *ingestionService) GetChunk(ctx context.Context, chunkID string) (*dto.ChunkResponse, error) {
	if strings.TrimSpace(chunkID) == "" {
		return nil, apperr.NewValidation("chunk_id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chunk, err := uow.DocumentChunkRepository().FindOne(ctx, specification.ByChunkId{ChunkId: chunkID})
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		return nil, apperr.NewValidationf("unknown chunk '%s'", chunkID)
	}
	return toChunkResponse(chunk), nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 200:
		return 200
	default:
		return limit
	}
}

func toChunkResponse(chunk *entity.DocumentChunk) *dto.ChunkResponse {
	return &dto.ChunkResponse{
		ChunkId:    chunk.ChunkId,
		Source:     chunk.Source,
		Page:       chunk.Page,
		ChunkIndex: chunk.ChunkIndex,
		Content:    chunk.Content,
	}
}

func (s *ingestionService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("Ingestion", "Event publish failed", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
