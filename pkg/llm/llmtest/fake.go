package llmtest

import (
	"context"
	"fmt"
	"sync"

	"ai-docqa-be/pkg/llm"
)

// Fake is a scripted LLMProvider for tests. Responses are served in FIFO
// order; when the script runs dry the fallback Func (if set) answers,
// otherwise the call errors. Every prompt is recorded for assertions.
type Fake struct {
	mu        sync.Mutex
	responses []string
	calls     int
	prompts   []string

	// Func, when set, computes a response from the last user message.
	Func func(prompt string) (string, error)

	// Err, when set, is returned by every call.
	Err error
}

var _ llm.LLMProvider = &Fake{}

func NewFake(responses ...string) *Fake {
	return &Fake{responses: responses}
}

func (f *Fake) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	prompt := ""
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	return f.next(prompt)
}

func (f *Fake) Generate(ctx context.Context, prompt string, _ ...llm.Option) (string, error) {
	return f.next(prompt)
}

func (f *Fake) next(prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.prompts = append(f.prompts, prompt)

	if f.Err != nil {
		return "", f.Err
	}
	if len(f.responses) > 0 {
		r := f.responses[0]
		f.responses = f.responses[1:]
		return r, nil
	}
	if f.Func != nil {
		return f.Func(prompt)
	}
	return "", fmt.Errorf("llmtest: no scripted response for call %d", f.calls)
}

// Calls returns how many judgment calls the fake served.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Prompts returns every prompt the fake has seen, in call order.
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
