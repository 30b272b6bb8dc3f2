package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The ask endpoint's wire contract: clients key off these exact names.
func TestAskResponseWireNames(t *testing.T) {
	raw, err := json.Marshal(AskResponse{
		RunId:      "run-1",
		Generation: "grounded answer",
		Intent:     "technical",
		Documents:  []EvidenceDTO{{Source: "doc.pdf", Page: 3, ChunkId: "doc.pdf_p3_c0"}},
		IsGrounded: "yes",
		IsUseful:   "yes",
		Retries:    1,
	})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	for _, key := range []string{
		"run_id", "generation", "intent", "documents_used",
		"is_grounded", "is_useful", "retries_used", "unverified",
	} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "answer")
	assert.NotContains(t, fields, "documents")
	assert.NotContains(t, fields, "retries")
}
