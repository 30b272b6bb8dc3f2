package state

// NotFoundSentinel is the fixed answer emitted when evidence exists but
// does not address the question. It is a machine-checkable contract value:
// the usefulness grader and the orchestrator pattern-match on it exactly.
const NotFoundSentinel = "Not found in context"

// Intent is the router's classification of a question.
type Intent string

const (
	IntentUnset          Intent = ""
	IntentConversational Intent = "conversational"
	IntentTechnical      Intent = "technical"
)

// Verdict is a binary grader outcome. Graders normalize everything the
// model says into yes/no before it reaches the workflow.
type Verdict string

const (
	VerdictUnset Verdict = ""
	VerdictYes   Verdict = "yes"
	VerdictNo    Verdict = "no"
)

// FailureReason tells the rewriter WHY the previous cycle failed so it
// can adapt the query (broaden, anchor, or sharpen).
type FailureReason string

const (
	FailureNone          FailureReason = ""
	FailureMissingDocs   FailureReason = "missing_docs"
	FailureHallucination FailureReason = "hallucination"
	FailureNotUseful     FailureReason = "not_useful"
)

// Evidence is a retrieved chunk with its provenance metadata.
type Evidence struct {
	Content     string  `json:"content"`
	Source      string  `json:"source"`
	Page        int     `json:"page"`
	ChunkID     string  `json:"chunk_id"`
	ContentType string  `json:"content_type"`
	Score       float64 `json:"score"`
}

// RunState is the session state threaded through one workflow run.
// Every stage consumes the prior state and returns a new value; nothing
// mutates in place, so parallel grading can never alias live state.
type RunState struct {
	Question      string
	Intent        Intent
	History       History
	Documents     []Evidence
	Generation    string
	RetryCount    int
	FailureReason FailureReason
	IsGrounded    Verdict
	IsUseful      Verdict
}

// New creates the fresh per-question state. FailureReason starts cleared.
func New(question string, history History) RunState {
	return RunState{
		Question: question,
		History:  history,
	}
}

func (s RunState) WithIntent(intent Intent) RunState {
	s.Intent = intent
	return s
}

// WithDocuments replaces the evidence set wholesale. Evidence is never
// merged across retries.
func (s RunState) WithDocuments(docs []Evidence) RunState {
	s.Documents = append([]Evidence(nil), docs...)
	return s
}

func (s RunState) WithGeneration(generation string) RunState {
	s.Generation = generation
	return s
}

func (s RunState) WithVerdicts(grounded, useful Verdict) RunState {
	s.IsGrounded = grounded
	s.IsUseful = useful
	return s
}

// WithLoopBack records one rewrite cycle: the retry counter moves exactly
// once, the failure reason is set for the rewriter, and the evidence set
// is cleared so the next retrieval starts from nothing.
func (s RunState) WithLoopBack(reason FailureReason) RunState {
	s.RetryCount++
	s.FailureReason = reason
	s.Documents = nil
	s.Generation = ""
	s.IsGrounded = VerdictUnset
	s.IsUseful = VerdictUnset
	return s
}

// WithTerminalSuccess clears the failure reason on a successful END.
func (s RunState) WithTerminalSuccess() RunState {
	s.FailureReason = FailureNone
	return s
}
