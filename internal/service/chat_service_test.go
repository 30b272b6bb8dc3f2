package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/repository/memory"
	"ai-docqa-be/pkg/rag/state"
	"ai-docqa-be/pkg/store"
)

func newTestChatService() *chatService {
	return &chatService{
		sessions: memory.NewSessionRepository(),
		logger:   nopLogger{},
	}
}

func TestResolveHistory_ExplicitHistoryWinsOverSession(t *testing.T) {
	s := newTestChatService()
	s.sessions.Save(&store.Session{
		ID:      "sess-1",
		History: state.History{}.AppendTurn("earlier question", "earlier answer"),
	})

	history := s.resolveHistory(&dto.AskRequest{
		SessionId: "sess-1",
		History:   []dto.HistoryTurnDTO{{Role: "user", Content: "override"}},
	})

	require.Len(t, history, 1)
	assert.Equal(t, "override", history[0].Content)
}

func TestResolveHistory_FallsBackToSessionStore(t *testing.T) {
	s := newTestChatService()
	s.sessions.Save(&store.Session{
		ID:      "sess-1",
		History: state.History{}.AppendTurn("earlier question", "earlier answer"),
	})

	history := s.resolveHistory(&dto.AskRequest{SessionId: "sess-1"})

	require.Len(t, history, 2)
	assert.Equal(t, "earlier question", history[0].Content)
}

func TestResolveHistory_UnknownSessionStartsFresh(t *testing.T) {
	s := newTestChatService()
	history := s.resolveHistory(&dto.AskRequest{SessionId: "never-seen"})
	assert.Empty(t, history)
}

func TestResolveHistory_BodyHistoryWithoutSession(t *testing.T) {
	s := newTestChatService()
	history := s.resolveHistory(&dto.AskRequest{
		History: []dto.HistoryTurnDTO{
			{Role: "user", Content: "q1"},
			{Role: "assistant", Content: "a1"},
		},
	})
	require.Len(t, history, 2)
	assert.Equal(t, state.RoleAssistant, history[1].Role)
}

func TestPersistTurn_AppendsOnlyTerminalTurn(t *testing.T) {
	s := newTestChatService()

	prior := state.History{}.AppendTurn("q1", "a1")
	s.sessions.Save(&store.Session{ID: "sess-2", History: prior})

	s.persistTurn("sess-2", "q2", "a2", prior)

	session, found := s.sessions.Get("sess-2")
	require.True(t, found)
	require.Len(t, session.History, 4)
	assert.Equal(t, "q2", session.History[2].Content)
	assert.Equal(t, "a2", session.History[3].Content)
	assert.Equal(t, "q2", session.LastQuery)
}

func TestPersistTurn_NoSessionIdIsNoOp(t *testing.T) {
	s := newTestChatService()
	s.persistTurn("", "q", "a", nil)

	_, found := s.sessions.Get("")
	assert.False(t, found)
}
