package intent

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/llm/llmtest"
	"ai-docqa-be/pkg/rag/state"
)

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRoute_ParsesModelOutput(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     state.Intent
	}{
		{"bare conversational", "conversational", state.IntentConversational},
		{"decorated conversational", "The intent is: Conversational.", state.IntentConversational},
		{"bare technical", "technical", state.IntentTechnical},
		{"mentions both leans technical", "conversational or technical? technical", state.IntentTechnical},
		{"garbage defaults to technical", "I cannot decide", state.IntentTechnical},
		{"empty defaults to technical", "", state.IntentTechnical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := NewRouter(llmtest.NewFake(tc.response), discard())

			got, err := router.Route(context.Background(), "how do I configure the index?")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoute_QuestionReachesThePrompt(t *testing.T) {
	fake := llmtest.NewFake("technical")
	router := NewRouter(fake, discard())

	_, err := router.Route(context.Background(), "what is the retention policy?")
	require.NoError(t, err)

	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "what is the retention policy?")
}

func TestRoute_UpstreamFailure(t *testing.T) {
	fake := llmtest.NewFake()
	fake.Err = errors.New("connection refused")
	router := NewRouter(fake, discard())

	got, err := router.Route(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, apperr.IsUpstream(err))
	assert.Equal(t, state.IntentUnset, got)
}
