package intent

import (
	"context"
	"log"
	"strings"

	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/llm"
	"ai-docqa-be/pkg/rag/state"
)

// Router classifies a raw question as conversational or technical.
// Pure LLM judgment call with a constrained two-value output; no history,
// no side effects.
type Router struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewRouter(llmProvider llm.LLMProvider, logger *log.Logger) *Router {
	return &Router{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Route classifies the question. Anything the model says that is not
// exactly one of the two values counts as technical: preferring retrieval
// over silently skipping it is the safer default.
func (r *Router) Route(ctx context.Context, question string) (state.Intent, error) {
	prompt := buildPrompt(question)

	response, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return state.IntentUnset, apperr.Upstream("llm.route", err)
	}

	intent := parseIntent(response)
	r.logger.Printf("[ROUTER] Question classified as %s (raw: %s)", intent, truncate(response, 40))
	return intent, nil
}

func buildPrompt(question string) string {
	var prompt strings.Builder
	prompt.WriteString("You are an expert at classifying user intent. ")
	prompt.WriteString("Classify the user's question as either 'conversational' (greetings, small talk, thanks) ")
	prompt.WriteString("or 'technical' (questions requiring data, facts, or documents). ")
	prompt.WriteString("Output only 'conversational' or 'technical'.\n\n")
	prompt.WriteString("Question: ")
	prompt.WriteString(question)
	return prompt.String()
}

func parseIntent(response string) state.Intent {
	normalized := strings.ToLower(strings.TrimSpace(response))
	if strings.Contains(normalized, "conversational") && !strings.Contains(normalized, "technical") {
		return state.IntentConversational
	}
	return state.IntentTechnical
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
