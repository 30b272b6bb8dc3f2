package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/pkg/rag/state"
	"ai-docqa-be/pkg/store"
)

func TestSessionRepository_RoundTrip(t *testing.T) {
	repo := NewSessionRepository()

	session := &store.Session{
		ID:      "sess-1",
		History: state.History{}.AppendTurn("hello", "hi there"),
	}
	repo.Save(session)

	got, found := repo.Get("sess-1")
	require.True(t, found)
	assert.Equal(t, session.ID, got.ID)
	require.Len(t, got.History, 2)
	assert.Equal(t, state.RoleUser, got.History[0].Role)
	assert.Equal(t, state.RoleAssistant, got.History[1].Role)
}

func TestSessionRepository_MissAndDelete(t *testing.T) {
	repo := NewSessionRepository()

	_, found := repo.Get("unknown")
	assert.False(t, found)

	repo.Save(&store.Session{ID: "sess-2"})
	repo.Delete("sess-2")
	_, found = repo.Get("sess-2")
	assert.False(t, found)
}
