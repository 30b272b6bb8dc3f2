package specification

import "gorm.io/gorm"

// BySource filters chunks by the originating document filename.
type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}

// ByChunkId filters by the deterministic chunk identifier.
type ByChunkId struct {
	ChunkId string
}

func (s ByChunkId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chunk_id = ?", s.ChunkId)
}

// ByPage filters chunks by page number (1-based).
type ByPage struct {
	Page int
}

func (s ByPage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("page = ?", s.Page)
}

// OrderByChunkPosition keeps chunks in reading order: page first, then
// the chunk index within the page.
type OrderByChunkPosition struct{}

func (s OrderByChunkPosition) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("page ASC").Order("chunk_index ASC")
}
