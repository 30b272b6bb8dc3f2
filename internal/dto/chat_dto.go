package dto

import "time"

type HistoryTurnDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type AskRequest struct {
	Question  string           `json:"question" validate:"required,min=1,max=4000"`
	SessionId string           `json:"session_id,omitempty"`
	History   []HistoryTurnDTO `json:"history,omitempty" validate:"max=50,dive"`
}

type EvidenceDTO struct {
	Content     string  `json:"content"`
	Source      string  `json:"source"`
	Page        int     `json:"page"`
	ChunkId     string  `json:"chunk_id"`
	ContentType string  `json:"content_type"`
	Score       float64 `json:"score"`
}

type AskResponse struct {
	RunId      string        `json:"run_id"`
	Generation string        `json:"generation"`
	Intent     string        `json:"intent"`
	Documents  []EvidenceDTO `json:"documents_used"`
	IsGrounded string        `json:"is_grounded,omitempty"`
	IsUseful   string        `json:"is_useful,omitempty"`
	Retries    int           `json:"retries_used"`
	Unverified bool          `json:"unverified"`
}

type ProgressEventDTO struct {
	RunId     string                 `json:"run_id"`
	Stage     string                 `json:"stage"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
