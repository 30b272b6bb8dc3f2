package rewrite

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/pkg/llm/llmtest"
	"ai-docqa-be/pkg/rag/state"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRewriteReturnsNonEmptyQuery(t *testing.T) {
	fake := llmtest.NewFake("Q3 2024 quarterly revenue figures annual report")
	rw := NewRewriter(fake, silentLogger())

	history := state.History{}.AppendTurn("Tell me about the annual report", "It covers 2024.")
	query, err := rw.Rewrite(context.Background(), "what about revenue?", history, state.FailureMissingDocs)
	require.NoError(t, err)

	assert.NotEmpty(t, query)
	// History supplied context, so the rewrite should differ from the raw question
	assert.NotEqual(t, "what about revenue?", query)
}

func TestRewriteStripsQuotingAndExtraLines(t *testing.T) {
	fake := llmtest.NewFake("\"broadened revenue search terms\"\nHere is why I chose this query...")
	rw := NewRewriter(fake, silentLogger())

	query, err := rw.Rewrite(context.Background(), "revenue?", nil, state.FailureMissingDocs)
	require.NoError(t, err)
	assert.Equal(t, "broadened revenue search terms", query)
}

func TestRewriteEmptyOutputFallsBackToQuestion(t *testing.T) {
	fake := llmtest.NewFake("   \n  ")
	rw := NewRewriter(fake, silentLogger())

	query, err := rw.Rewrite(context.Background(), "original question", nil, state.FailureNotUseful)
	require.NoError(t, err)
	assert.Equal(t, "original question", query)
}

func TestRewritePromptCarriesFailureReason(t *testing.T) {
	fake := llmtest.NewFake("anchored query")
	rw := NewRewriter(fake, silentLogger())

	_, err := rw.Rewrite(context.Background(), "q", nil, state.FailureHallucination)
	require.NoError(t, err)

	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "not grounded")
}
