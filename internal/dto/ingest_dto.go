package dto

import "time"

type IngestResponse struct {
	Source      string `json:"source"`
	Pages       int    `json:"pages"`
	ChunksAdded int    `json:"chunks_added"`
}

type ReembedResponse struct {
	Source string `json:"source"`
	Queued bool   `json:"queued"`
}

type DeleteSourceResponse struct {
	Source        string `json:"source"`
	ChunksRemoved int64  `json:"chunks_removed"`
}

// PublishReembedMessage is the payload queued on the re-embedding topic.
type PublishReembedMessage struct {
	Source string `json:"source"`
}

type ChunkResponse struct {
	ChunkId    string `json:"chunk_id"`
	Source     string `json:"source"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
}

type ListChunksResponse struct {
	Source string           `json:"source"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Chunks []*ChunkResponse `json:"chunks"`
}

type SourceResponse struct {
	Source     string    `json:"source"`
	ChunkCount int       `json:"chunk_count"`
	Pages      int       `json:"pages"`
	IngestedAt time.Time `json:"ingested_at"`
}
