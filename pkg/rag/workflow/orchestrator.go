package workflow

import (
	"context"
	"log"

	"ai-docqa-be/pkg/llm"
	"ai-docqa-be/pkg/rag/generate"
	"ai-docqa-be/pkg/rag/grade"
	"ai-docqa-be/pkg/rag/intent"
	"ai-docqa-be/pkg/rag/retrieve"
	"ai-docqa-be/pkg/rag/rewrite"
	"ai-docqa-be/pkg/rag/state"
)

// Stage names emitted on the progress stream, one per state transition.
const (
	StageRoute           = "route"
	StageDirectAnswer    = "direct_answer"
	StageRetrieve        = "retrieve"
	StageGradeDocs       = "grade_docs"
	StageGenerate        = "generate"
	StageGradeGrounding  = "grade_grounding"
	StageGradeUsefulness = "grade_usefulness"
	StageRewrite         = "rewrite"
	StageEnd             = "end"
)

// ProgressSink receives workflow state transitions for an active run.
// The websocket hub implements it; a nil sink disables streaming.
type ProgressSink interface {
	Emit(runID string, stage string, details map[string]interface{})
}

// Config tunes the orchestrator.
type Config struct {
	// MaxRetries bounds the number of rewrite loop-backs. The budget is
	// checked BEFORE incrementing, so a run performs at most MaxRetries
	// loop-backs and MaxRetries+1 retrieval cycles.
	MaxRetries int
	// GradeParallelism caps concurrent relevance-grading calls.
	GradeParallelism int
}

func DefaultConfig() Config {
	return Config{MaxRetries: 2, GradeParallelism: 4}
}

// Result is the terminal outcome of one run.
type Result struct {
	Generation  string
	Documents   []state.Evidence
	Intent      state.Intent
	IsGrounded  state.Verdict
	IsUseful    state.Verdict
	RetriesUsed int
	// Unverified marks a best-effort answer that exhausted its retry
	// budget without passing both grading gates.
	Unverified bool
}

// Orchestrator is the bounded-retry state machine:
//
//	ROUTE → {DIRECT_ANSWER | RETRIEVE} → GRADE_DOCS → GENERATE →
//	GRADE_GROUNDING → GRADE_USEFULNESS → {END | REWRITE → RETRIEVE}
//
// Each iteration replaces documents and generation wholesale; nothing
// accumulates across retries.
type Orchestrator struct {
	router     *intent.Router
	retriever  *retrieve.Retriever
	relevance  *grade.RelevanceGrader
	grounding  *grade.HallucinationGrader
	usefulness *grade.UsefulnessGrader
	generator  *generate.Generator
	rewriter   *rewrite.Rewriter

	config Config
	logger *log.Logger
	sink   ProgressSink
}

// NewOrchestrator wires all judgment-call components from the single LLM
// provider; the retriever arrives assembled since it owns the embedding
// provider, index and scorer. sink may be nil.
func NewOrchestrator(
	llmProvider llm.LLMProvider,
	retriever *retrieve.Retriever,
	config Config,
	logger *log.Logger,
	sink ProgressSink,
) *Orchestrator {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Orchestrator{
		router:     intent.NewRouter(llmProvider, logger),
		retriever:  retriever,
		relevance:  grade.NewRelevanceGrader(llmProvider, logger, config.GradeParallelism),
		grounding:  grade.NewHallucinationGrader(llmProvider, logger),
		usefulness: grade.NewUsefulnessGrader(llmProvider, logger),
		generator:  generate.NewGenerator(llmProvider, logger),
		rewriter:   rewrite.NewRewriter(llmProvider, logger),
		config:     config,
		logger:     logger,
		sink:       sink,
	}
}

// Run executes one workflow run for a question. State is owned
// exclusively by this run; upstream failures abort the run, grading
// failures are absorbed into the retry / fail-closed policy upstream of
// this loop.
func (o *Orchestrator) Run(ctx context.Context, runID, question string, history state.History) (*Result, error) {
	st := state.New(question, history)

	// ROUTE
	o.emit(runID, StageRoute, map[string]interface{}{"question": question})
	routed, err := o.router.Route(ctx, question)
	if err != nil {
		return nil, err
	}
	st = st.WithIntent(routed)

	if routed == state.IntentConversational {
		// DIRECT_ANSWER: generate with empty evidence, skip all grading.
		o.emit(runID, StageDirectAnswer, nil)
		generation, err := o.generator.Generate(ctx, question, history, nil)
		if err != nil {
			return nil, err
		}
		o.emit(runID, StageEnd, map[string]interface{}{"terminal": "direct_answer"})
		return &Result{
			Generation: generation,
			Documents:  []state.Evidence{},
			Intent:     state.IntentConversational,
		}, nil
	}

	query := question

	for {
		// Upstream disconnect: stop before issuing further external calls.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// RETRIEVE
		o.emit(runID, StageRetrieve, map[string]interface{}{"retry": st.RetryCount})
		docs, err := o.retriever.Retrieve(ctx, query)
		if err != nil {
			return nil, err
		}
		st = st.WithDocuments(docs)

		// GRADE_DOCS
		o.emit(runID, StageGradeDocs, map[string]interface{}{"candidates": len(docs)})
		relevant, err := o.relevance.GradeAll(ctx, question, st.Documents)
		if err != nil {
			return nil, err
		}
		st = st.WithDocuments(relevant)

		if len(st.Documents) == 0 && st.RetryCount < o.config.MaxRetries {
			st, query, err = o.loopBack(ctx, runID, st, state.FailureMissingDocs)
			if err != nil {
				return nil, err
			}
			continue
		}
		// Retries exhausted with nothing relevant: generate anyway with
		// empty evidence and let the sentinel contract take over.

		// GENERATE
		o.emit(runID, StageGenerate, map[string]interface{}{"evidence": len(st.Documents)})
		generation, err := o.generator.Generate(ctx, question, history, st.Documents)
		if err != nil {
			return nil, err
		}
		st = st.WithGeneration(generation)

		// GRADE_GROUNDING
		o.emit(runID, StageGradeGrounding, nil)
		grounded, err := o.grounding.Grade(ctx, st.Documents, st.Generation)
		if err != nil {
			return nil, err
		}
		if grounded == state.VerdictNo && st.RetryCount < o.config.MaxRetries {
			st, query, err = o.loopBack(ctx, runID, st, state.FailureHallucination)
			if err != nil {
				return nil, err
			}
			continue
		}

		// GRADE_USEFULNESS
		o.emit(runID, StageGradeUsefulness, nil)
		useful, err := o.usefulness.Grade(ctx, question, st.Generation)
		if err != nil {
			return nil, err
		}
		st = st.WithVerdicts(grounded, useful)

		if useful == state.VerdictNo && st.RetryCount < o.config.MaxRetries {
			st, query, err = o.loopBack(ctx, runID, st, state.FailureNotUseful)
			if err != nil {
				return nil, err
			}
			continue
		}

		// END: either success, or best-effort with the budget exhausted.
		unverified := grounded != state.VerdictYes || useful != state.VerdictYes
		if !unverified {
			st = st.WithTerminalSuccess()
		}
		o.emit(runID, StageEnd, map[string]interface{}{
			"retries":    st.RetryCount,
			"unverified": unverified,
		})
		return &Result{
			Generation:  st.Generation,
			Documents:   st.Documents,
			Intent:      st.Intent,
			IsGrounded:  grounded,
			IsUseful:    useful,
			RetriesUsed: st.RetryCount,
			Unverified:  unverified,
		}, nil
	}
}

// loopBack performs REWRITE: the retry counter moves exactly once, the
// failure reason reaches the rewriter, and the evidence set is cleared.
func (o *Orchestrator) loopBack(ctx context.Context, runID string, st state.RunState, reason state.FailureReason) (state.RunState, string, error) {
	st = st.WithLoopBack(reason)
	o.emit(runID, StageRewrite, map[string]interface{}{
		"reason": string(reason),
		"retry":  st.RetryCount,
	})

	query, err := o.rewriter.Rewrite(ctx, st.Question, st.History, reason)
	if err != nil {
		return st, "", err
	}
	return st, query, nil
}

func (o *Orchestrator) emit(runID, stage string, details map[string]interface{}) {
	o.logger.Printf("[WORKFLOW] run=%s stage=%s", runID, stage)
	if o.sink != nil {
		o.sink.Emit(runID, stage, details)
	}
}
