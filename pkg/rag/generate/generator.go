package generate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/llm"
	"ai-docqa-be/pkg/rag/state"
)

// Generator produces the answer from question, history and graded
// evidence. With evidence present, every claim must connect to a
// citation; evidence that does not address the question yields the exact
// "Not found in context" sentinel; with no evidence at all the model
// answers from general knowledge.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (g *Generator) Generate(ctx context.Context, question string, history state.History, docs []state.Evidence) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt()})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Question: %s\n\nContext:\n%s", question, buildContext(docs)),
	})

	response, err := g.llmProvider.Chat(ctx, messages)
	if err != nil {
		return "", apperr.Upstream("llm.generate", err)
	}

	g.logger.Printf("[GENERATE] Answer produced from %d chunks", len(docs))
	return strings.TrimSpace(response), nil
}

func systemPrompt() string {
	var prompt strings.Builder
	prompt.WriteString("You are a helpful assistant. ")
	prompt.WriteString("If context is provided, use it to answer the question accurately. ")
	prompt.WriteString("If no useful context exists or context is empty, answer normally. ")
	prompt.WriteString("For every part of your answer, connect it to one of the citations. ")
	prompt.WriteString(fmt.Sprintf("If context exists but does not contain the answer, reply: '%s'.", state.NotFoundSentinel))
	return prompt.String()
}

// buildContext renders the evidence set as numbered, citable blocks.
func buildContext(docs []state.Evidence) string {
	if len(docs) == 0 {
		return "(empty)"
	}

	var ctx strings.Builder
	for i, doc := range docs {
		ctx.WriteString(fmt.Sprintf("[%d] (%s, page %d)\n%s\n\n", i+1, doc.Source, doc.Page, doc.Content))
	}
	return ctx.String()
}
