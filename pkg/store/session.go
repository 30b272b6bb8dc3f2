package store

import "ai-docqa-be/pkg/rag/state"

// Session represents the active conversation state held in memory.
// Only terminal turns ever reach History; intermediate retries of the
// workflow never surface here.
type Session struct {
	ID      string        `json:"id"`
	History state.History `json:"history"`

	// Metadata for last interaction
	LastQuery string `json:"last_query"`
}
