package mapper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/internal/entity"
)

func TestDocumentChunkMapper_RoundTrip(t *testing.T) {
	m := NewDocumentChunkMapper()

	now := time.Now().Truncate(time.Second)
	e := &entity.DocumentChunk{
		Id:             uuid.New(),
		Content:        "chunk text",
		Source:         "manual.pdf",
		Page:           3,
		ChunkIndex:     1,
		ChunkId:        "manual.pdf_p3_c1",
		ContentType:    "text",
		Metadata:       map[string]interface{}{"char_count": float64(10)},
		EmbeddingValue: []float32{0.1, 0.2, 0.3},
		CreatedAt:      now,
	}

	model := m.ToModel(e)
	require.NotNil(t, model)
	assert.Equal(t, e.ChunkId, model.ChunkId)
	assert.False(t, model.DeletedAt.Valid)

	back := m.ToEntity(model)
	require.NotNil(t, back)
	assert.Equal(t, e.Content, back.Content)
	assert.Equal(t, e.Page, back.Page)
	assert.Equal(t, e.EmbeddingValue, back.EmbeddingValue)
	assert.Equal(t, e.Metadata, back.Metadata)
	assert.False(t, back.IsDeleted)
}

func TestDocumentChunkMapper_SoftDelete(t *testing.T) {
	m := NewDocumentChunkMapper()

	deleted := time.Now()
	e := &entity.DocumentChunk{
		Id:        uuid.New(),
		ChunkId:   "a.pdf_p1_c0",
		DeletedAt: &deleted,
	}

	model := m.ToModel(e)
	require.True(t, model.DeletedAt.Valid)

	back := m.ToEntity(model)
	assert.True(t, back.IsDeleted)
	require.NotNil(t, back.DeletedAt)
}

func TestDocumentChunkMapper_NilSafe(t *testing.T) {
	m := NewDocumentChunkMapper()
	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))
}
