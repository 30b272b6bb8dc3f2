package grade

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/llm/llmtest"
	"ai-docqa-be/pkg/rag/state"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestNormalizeVerdict(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     state.Verdict
	}{
		{"plain yes", "yes", state.VerdictYes},
		{"plain no", "no", state.VerdictNo},
		{"capitalized", "Yes", state.VerdictYes},
		{"trailing punctuation", "yes.", state.VerdictYes},
		{"verbose yes", "The answer is grounded, so: yes", state.VerdictYes},
		{"yes but hedged with no", "yes and no", state.VerdictYes},
		{"out of vocabulary fails closed", "maybe", state.VerdictNo},
		{"empty fails closed", "", state.VerdictNo},
		{"gibberish fails closed", "42", state.VerdictNo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeVerdict(tt.response))
		})
	}
}

func TestGradeAllKeepsOnlyRelevant(t *testing.T) {
	fake := llmtest.NewFake()
	fake.Func = func(prompt string) (string, error) {
		if strings.Contains(prompt, "KEEP") {
			return "yes", nil
		}
		return "no", nil
	}

	grader := NewRelevanceGrader(fake, silentLogger(), 4)
	docs := []state.Evidence{
		{ChunkID: "a", Content: "KEEP first"},
		{ChunkID: "b", Content: "drop this"},
		{ChunkID: "c", Content: "KEEP third"},
	}

	survivors, err := grader.GradeAll(context.Background(), "question", docs)
	require.NoError(t, err)
	require.Len(t, survivors, 2)

	// Retrieval order survives parallel grading
	assert.Equal(t, "a", survivors[0].ChunkID)
	assert.Equal(t, "c", survivors[1].ChunkID)
}

func TestGradeAllEmptyInput(t *testing.T) {
	fake := llmtest.NewFake()
	grader := NewRelevanceGrader(fake, silentLogger(), 2)

	survivors, err := grader.GradeAll(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, survivors)
	assert.Zero(t, fake.Calls())
}

func TestGradeAllUpstreamErrorFailsRun(t *testing.T) {
	fake := llmtest.NewFake()
	fake.Err = errors.New("backend down")
	grader := NewRelevanceGrader(fake, silentLogger(), 2)

	_, err := grader.GradeAll(context.Background(), "q", []state.Evidence{{ChunkID: "a"}})
	require.Error(t, err)
	assert.True(t, apperr.IsUpstream(err))
}

func TestUsefulnessSentinelShortCircuit(t *testing.T) {
	fake := llmtest.NewFake()
	grader := NewUsefulnessGrader(fake, silentLogger())

	verdict, err := grader.Grade(context.Background(), "q", state.NotFoundSentinel)
	require.NoError(t, err)

	assert.Equal(t, state.VerdictNo, verdict)
	// The contract: no judgment call is spent on the sentinel
	assert.Zero(t, fake.Calls())
}

func TestUsefulnessNonSentinelInvokesModel(t *testing.T) {
	fake := llmtest.NewFake("yes")
	grader := NewUsefulnessGrader(fake, silentLogger())

	verdict, err := grader.Grade(context.Background(), "q", "A real answer.")
	require.NoError(t, err)

	assert.Equal(t, state.VerdictYes, verdict)
	assert.Equal(t, 1, fake.Calls())
}

func TestHallucinationGraderIncludesFacts(t *testing.T) {
	fake := llmtest.NewFake("yes")
	grader := NewHallucinationGrader(fake, silentLogger())

	docs := []state.Evidence{{Content: "the Q3 revenue was 10M"}}
	verdict, err := grader.Grade(context.Background(), docs, "Revenue was 10M.")
	require.NoError(t, err)
	assert.Equal(t, state.VerdictYes, verdict)

	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "the Q3 revenue was 10M")
	assert.Contains(t, prompts[0], "Revenue was 10M.")
}
