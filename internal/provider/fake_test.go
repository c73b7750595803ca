package provider

import (
	"context"
	"errors"
	"sync"

	"github.com/FahadBinHussain/Xenovate/internal/config"
)

// statusErr is a minimal upstream error carrying an HTTP status.
type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string   { return e.msg }
func (e *statusErr) StatusCode() int { return e.code }

var (
	errQuota      = errors.New("429 Too Many Requests: Resource has been exhausted (e.g. check quota).")
	errCredential = errors.New("API key not valid. Please pass a valid API key. [API_KEY_INVALID]")
	errServer     = errors.New("upstream returned 500: internal error")
)

// fakeGenerator answers per model from a script and records every call.
type fakeGenerator struct {
	mu      sync.Mutex
	replies map[string]error
	text    string
	calls   []string
	// onCall runs before the reply is produced.
	onCall func(model string)
}

func newFake(replies map[string]error) *fakeGenerator {
	return &fakeGenerator{replies: replies, text: "ok"}
}

func (f *fakeGenerator) Generate(_ context.Context, model, prompt string, _ GenerationConfig) (Generation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, model)
	hook := f.onCall
	err := f.replies[model]
	f.mu.Unlock()

	if hook != nil {
		hook(model)
	}
	if err != nil {
		return Generation{}, err
	}
	return Generation{Model: model, Text: f.text + ":" + prompt, Usage: Usage{PromptTokens: 1, OutputTokens: 2, TotalTokens: 3}}, nil
}

func (f *fakeGenerator) setReply(model string, err error) {
	f.mu.Lock()
	f.replies[model] = err
	f.mu.Unlock()
}

func (f *fakeGenerator) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGenerator) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func candidates(names ...string) []config.ModelCandidate {
	out := make([]config.ModelCandidate, len(names))
	for i, n := range names {
		out[i] = config.ModelCandidate{Name: n, Priority: i + 1}
	}
	return out
}
