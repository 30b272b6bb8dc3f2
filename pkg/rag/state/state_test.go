package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDocumentsReplacesWholesale(t *testing.T) {
	s := New("question", nil)
	s = s.WithDocuments([]Evidence{{ChunkID: "a_p1_c0"}, {ChunkID: "a_p1_c1"}})
	s = s.WithDocuments([]Evidence{{ChunkID: "b_p2_c0"}})

	assert.Len(t, s.Documents, 1)
	assert.Equal(t, "b_p2_c0", s.Documents[0].ChunkID)
}

func TestWithDocumentsCopiesInput(t *testing.T) {
	docs := []Evidence{{ChunkID: "a"}}
	s := New("q", nil).WithDocuments(docs)

	docs[0].ChunkID = "mutated"
	assert.Equal(t, "a", s.Documents[0].ChunkID)
}

func TestWithLoopBackClearsCycleState(t *testing.T) {
	s := New("q", nil).
		WithDocuments([]Evidence{{ChunkID: "a"}}).
		WithGeneration("an answer").
		WithVerdicts(VerdictNo, VerdictUnset)

	s = s.WithLoopBack(FailureHallucination)

	assert.Equal(t, 1, s.RetryCount)
	assert.Equal(t, FailureHallucination, s.FailureReason)
	assert.Empty(t, s.Documents)
	assert.Empty(t, s.Generation)
	assert.Equal(t, VerdictUnset, s.IsGrounded)
	assert.Equal(t, VerdictUnset, s.IsUseful)
}

func TestRetryCountMonotonic(t *testing.T) {
	s := New("q", nil)
	for i := 1; i <= 3; i++ {
		s = s.WithLoopBack(FailureMissingDocs)
		assert.Equal(t, i, s.RetryCount)
	}
}

func TestHistoryAppendDoesNotMutateReceiver(t *testing.T) {
	base := History{}.Append(RoleUser, "hello")
	branchA := base.Append(RoleAssistant, "hi there")
	branchB := base.Append(RoleAssistant, "greetings")

	assert.Len(t, base, 1)
	assert.Equal(t, "hi there", branchA[1].Content)
	assert.Equal(t, "greetings", branchB[1].Content)
}

func TestHistoryAppendTurn(t *testing.T) {
	h := History{}.AppendTurn("what is X?", "X is Y.")

	assert.Len(t, h, 2)
	assert.Equal(t, RoleUser, h[0].Role)
	assert.Equal(t, RoleAssistant, h[1].Role)
}
