package state

// Message roles. The workflow itself never appends intermediate turns;
// alternation is a property of terminal turns only.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is an explicit append-only log of conversation turns.
// Append returns a new value; rewritten queries and intermediate answers
// never enter the log, only the final terminal turn of a run does.
type History []Message

// Append returns a new History with the turn added. The receiver is not
// modified, so snapshots held by in-flight runs stay stable.
func (h History) Append(role, content string) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, Message{Role: role, Content: content})
}

// AppendTurn records a completed user/assistant exchange.
func (h History) AppendTurn(question, answer string) History {
	return h.Append(RoleUser, question).Append(RoleAssistant, answer)
}
