package rewrite

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/llm"
	"ai-docqa-be/pkg/rag/state"
)

// Rewriter turns a failed question into one standalone search query.
// It is invoked on loop-back, so the failure reason tells it what went
// wrong with the previous cycle and how to adapt.
type Rewriter struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewRewriter(llmProvider llm.LLMProvider, logger *log.Logger) *Rewriter {
	return &Rewriter{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Rewrite produces the next retrieval query. The model must not answer
// the question; it only outputs the optimized query. An empty rewrite
// falls back to the original question so retrieval never runs on "".
func (r *Rewriter) Rewrite(ctx context.Context, question string, history state.History, reason state.FailureReason) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt()})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{
		Role: llm.RoleUser,
		Content: fmt.Sprintf(
			"Failure Reason: %s\n\nOriginal Question: %s\n\nProvide the optimized standalone search query:",
			describeReason(reason), question,
		),
	})

	response, err := r.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.0))
	if err != nil {
		return "", apperr.Upstream("llm.rewrite", err)
	}

	query := sanitize(response)
	if query == "" {
		r.logger.Printf("[REWRITE] Empty rewrite, falling back to original question")
		query = question
	}

	r.logger.Printf("[REWRITE] reason=%s query=%s", reason, truncate(query, 60))
	return query, nil
}

func systemPrompt() string {
	var prompt strings.Builder
	prompt.WriteString("You are an expert at query expansion and search optimization. ")
	prompt.WriteString("Your goal is to create a single, standalone search query for a vector database.\n\n")
	prompt.WriteString("CRITICAL INSTRUCTIONS:\n")
	prompt.WriteString("1. Incorporate conversation history to resolve context (names, dates).\n")
	prompt.WriteString("2. If a 'Failure Reason' is provided, adapt your query to solve that specific issue:\n")
	prompt.WriteString("   - If documents were missing: Broaden search terms/use synonyms.\n")
	prompt.WriteString("   - If hallucination occurred: Add keywords for factual grounding.\n")
	prompt.WriteString("   - If not useful: Focus more on the specific user intent.\n")
	prompt.WriteString("3. Do not answer the question; only output the optimized query.")
	return prompt.String()
}

func describeReason(reason state.FailureReason) string {
	switch reason {
	case state.FailureMissingDocs:
		return "No relevant documents were found for the previous query."
	case state.FailureHallucination:
		return "The previous answer was not grounded in the retrieved documents."
	case state.FailureNotUseful:
		return "The previous answer did not address the user's question."
	default:
		return "None."
	}
}

// sanitize collapses the model output to one line and strips the quoting
// models like to wrap queries in.
func sanitize(response string) string {
	query := strings.TrimSpace(response)
	if idx := strings.IndexByte(query, '\n'); idx >= 0 {
		query = query[:idx]
	}
	query = strings.Trim(query, "\"'` ")
	return query
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
