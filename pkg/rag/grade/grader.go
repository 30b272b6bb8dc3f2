package grade

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"ai-docqa-be/pkg/apperr"
	"ai-docqa-be/pkg/llm"
	"ai-docqa-be/pkg/rag/state"
)

// All three graders share one contract shape: structured text in, a
// strict yes/no out. Whatever the model actually says is normalized
// before it reaches the orchestrator; ungraded states never propagate.

// normalizeVerdict maps free-form model output onto yes/no. Out-of-vocabulary
// output fails closed to "no".
func normalizeVerdict(response string) state.Verdict {
	normalized := strings.ToLower(strings.TrimSpace(response))
	normalized = strings.Trim(normalized, ".!'\"`")

	hasYes := strings.Contains(normalized, "yes")
	hasNo := strings.Contains(normalized, "no")

	switch {
	case hasYes && !hasNo:
		return state.VerdictYes
	case strings.HasPrefix(normalized, "yes"):
		return state.VerdictYes
	default:
		return state.VerdictNo
	}
}

// RelevanceGrader judges, per retrieved chunk, whether it relates to the
// question.
type RelevanceGrader struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
	parallelism int
}

func NewRelevanceGrader(llmProvider llm.LLMProvider, logger *log.Logger, parallelism int) *RelevanceGrader {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &RelevanceGrader{
		llmProvider: llmProvider,
		logger:      logger,
		parallelism: parallelism,
	}
}

// Grade judges a single chunk against the question.
func (g *RelevanceGrader) Grade(ctx context.Context, question string, doc state.Evidence) (state.Verdict, error) {
	var prompt strings.Builder
	prompt.WriteString("You are a grader assessing relevance of a retrieved document to a user question. ")
	prompt.WriteString("If the document contains keyword(s) or semantic meaning related to the question, ")
	prompt.WriteString("grade it as relevant. Give a binary score 'yes' or 'no'.\n\n")
	prompt.WriteString(fmt.Sprintf("Retrieved document:\n\n%s\n\nUser question: %s", doc.Content, question))

	response, err := g.llmProvider.Generate(ctx, prompt.String(), llm.WithTemperature(0.0))
	if err != nil {
		return state.VerdictUnset, apperr.Upstream("llm.grade_relevance", err)
	}
	return normalizeVerdict(response), nil
}

// GradeAll grades every chunk and returns only the relevant survivors,
// preserving retrieval order. Grading calls are independent and
// order-insensitive, so they fan out; survivors land in indexed slots.
func (g *RelevanceGrader) GradeAll(ctx context.Context, question string, docs []state.Evidence) ([]state.Evidence, error) {
	if len(docs) == 0 {
		return []state.Evidence{}, nil
	}

	verdicts := make([]state.Verdict, len(docs))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelism)

	for i, doc := range docs {
		i, doc := i, doc
		eg.Go(func() error {
			verdict, err := g.Grade(gctx, question, doc)
			if err != nil {
				return err
			}
			verdicts[i] = verdict
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	survivors := make([]state.Evidence, 0, len(docs))
	for i, doc := range docs {
		if verdicts[i] == state.VerdictYes {
			survivors = append(survivors, doc)
		} else {
			g.logger.Printf("[GRADE] Dropped irrelevant chunk %s", doc.ChunkID)
		}
	}

	g.logger.Printf("[GRADE] Relevance: %d/%d chunks survived", len(survivors), len(docs))
	return survivors, nil
}

// HallucinationGrader judges whether a generation is supported by the
// evidence set.
type HallucinationGrader struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewHallucinationGrader(llmProvider llm.LLMProvider, logger *log.Logger) *HallucinationGrader {
	return &HallucinationGrader{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (g *HallucinationGrader) Grade(ctx context.Context, docs []state.Evidence, generation string) (state.Verdict, error) {
	var facts strings.Builder
	for _, doc := range docs {
		facts.WriteString(doc.Content)
		facts.WriteString("\n\n")
	}

	var prompt strings.Builder
	prompt.WriteString("You are a grader assessing whether an LLM generation is grounded in / supported by a set of retrieved facts. ")
	prompt.WriteString("Give a binary score 'yes' or 'no'. 'yes' means the answer is grounded in the facts.\n\n")
	prompt.WriteString(fmt.Sprintf("Set of facts:\n\n%s\n\nLLM generation: %s", facts.String(), generation))

	response, err := g.llmProvider.Generate(ctx, prompt.String(), llm.WithTemperature(0.0))
	if err != nil {
		return state.VerdictUnset, apperr.Upstream("llm.grade_grounding", err)
	}

	verdict := normalizeVerdict(response)
	g.logger.Printf("[GRADE] Grounding: %s", verdict)
	return verdict, nil
}

// UsefulnessGrader judges whether a generation actually addresses the
// question.
type UsefulnessGrader struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewUsefulnessGrader(llmProvider llm.LLMProvider, logger *log.Logger) *UsefulnessGrader {
	return &UsefulnessGrader{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Grade short-circuits on the "Not found in context" sentinel: that answer
// is not-useful by definition, and skipping the judgment call removes both
// a round-trip and any grading ambiguity.
func (g *UsefulnessGrader) Grade(ctx context.Context, question, generation string) (state.Verdict, error) {
	if strings.TrimSpace(generation) == state.NotFoundSentinel {
		g.logger.Printf("[GRADE] Usefulness: no (sentinel answer, judgment call skipped)")
		return state.VerdictNo, nil
	}

	var prompt strings.Builder
	prompt.WriteString("You are a grader assessing whether an LLM generation is useful to the user. ")
	prompt.WriteString("If the answer is 'I don't know', 'not found', or 'Not found in context', grade it as 'no'. ")
	prompt.WriteString("If it answers the question, grade it as 'yes'.\n\n")
	prompt.WriteString(fmt.Sprintf("User question:\n\n%s\n\nLLM generation: %s", question, generation))

	response, err := g.llmProvider.Generate(ctx, prompt.String(), llm.WithTemperature(0.0))
	if err != nil {
		return state.VerdictUnset, apperr.Upstream("llm.grade_usefulness", err)
	}

	verdict := normalizeVerdict(response)
	g.logger.Printf("[GRADE] Usefulness: %s", verdict)
	return verdict, nil
}
