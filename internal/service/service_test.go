package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FahadBinHussain/Xenovate/internal/config"
	"github.com/FahadBinHussain/Xenovate/internal/operation"
	"github.com/FahadBinHussain/Xenovate/internal/provider"
	"github.com/FahadBinHussain/Xenovate/internal/usage"
)

// spyInvoker counts calls and answers with a fixed reply.
type spyInvoker struct {
	calls atomic.Int32
	text  string
	err   error
}

func (s *spyInvoker) Invoke(_ context.Context, _ string) (provider.Generation, error) {
	s.calls.Add(1)
	if s.err != nil {
		return provider.Generation{}, s.err
	}
	return provider.Generation{Model: "spy-model", Text: s.text, Usage: provider.Usage{PromptTokens: 4, OutputTokens: 6, TotalTokens: 10}}, nil
}

type outcomeSpy struct {
	outcomes []string
}

func (o *outcomeSpy) ObserveOperation(op, outcome string) {
	o.outcomes = append(o.outcomes, op+":"+outcome)
}

func TestRun_EmptyCodeNeverInvokes(t *testing.T) {
	for _, op := range operation.All {
		t.Run(op.String(), func(t *testing.T) {
			spy := &spyInvoker{text: "unused"}
			svc := New(spy, Options{})

			result, err := svc.Run(context.Background(), op, operation.CodeRequest{
				Code: "", Language: "python", TargetLanguage: "go",
			})

			var ve *operation.ValidationError
			if !errors.As(err, &ve) || ve.Field != "code" {
				t.Fatalf("expected ValidationError on code, got %v", err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %#v", result)
			}
			if n := spy.calls.Load(); n != 0 {
				t.Errorf("expected 0 model calls, got %d", n)
			}
		})
	}
}

func TestRun_ConvertRequiresTarget(t *testing.T) {
	spy := &spyInvoker{}
	_, err := New(spy, Options{}).Convert(context.Background(), operation.CodeRequest{Code: "x=1", Language: "python"})

	var ve *operation.ValidationError
	if !errors.As(err, &ve) || ve.Field != "target_language" {
		t.Fatalf("expected ValidationError on target_language, got %v", err)
	}
	if spy.calls.Load() != 0 {
		t.Error("invoker must not be called")
	}
}

func TestRun_NotConfigured(t *testing.T) {
	spy := &spyInvoker{text: "unused"}
	observer := &outcomeSpy{}
	svc := New(spy, Options{Configured: func() bool { return false }, Observer: observer})

	result, err := svc.Explain(context.Background(), operation.CodeRequest{Code: "x=1", Language: "python"})
	if !errors.Is(err, operation.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if result != nil || spy.calls.Load() != 0 {
		t.Errorf("expected no result and no calls, got %#v and %d calls", result, spy.calls.Load())
	}

	// Validation is checked before configuration.
	_, err = svc.Explain(context.Background(), operation.CodeRequest{Language: "python"})
	var ve *operation.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError first, got %v", err)
	}

	want := []string{"explain:not_configured", "explain:rejected"}
	if strings.Join(observer.outcomes, ",") != strings.Join(want, ",") {
		t.Errorf("expected outcomes %v, got %v", want, observer.outcomes)
	}
}

func TestRun_ExplainEndToEnd(t *testing.T) {
	var prompts []string
	gen := provider.GeneratorFunc(func(_ context.Context, model, prompt string, _ provider.GenerationConfig) (provider.Generation, error) {
		prompts = append(prompts, prompt)
		return provider.Generation{Model: model, Text: "  This sets x to 1.  "}, nil
	})
	inv := provider.NewInvoker(gen, config.DefaultModels(), provider.Options{})
	svc := New(inv, Options{})

	result, err := svc.Explain(context.Background(), operation.CodeRequest{Code: "x=1", Language: "python"})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	want := operation.ExplanationResult{Explanation: "This sets x to 1."}
	if result != want {
		t.Errorf("expected %#v, got %#v", want, result)
	}
	if len(prompts) != 1 || !strings.Contains(prompts[0], "x=1") || !strings.Contains(prompts[0], "python") {
		t.Errorf("unexpected prompts %q", prompts)
	}
}

func TestRun_AnalyzeNormalizes(t *testing.T) {
	spy := &spyInvoker{text: "```json\n{\"time_complexity\":\"O(n)\",\"space_complexity\":\"O(1)\",\"explanation\":\"Single pass.\"}\n```"}
	result, err := New(spy, Options{}).Analyze(context.Background(), operation.CodeRequest{Code: "for x in xs: pass", Language: "python"})
	if err != nil {
		t.Fatal(err)
	}
	want := operation.AnalysisResult{TimeComplexity: "O(n)", SpaceComplexity: "O(1)", Explanation: "Single pass."}
	if result != want {
		t.Errorf("expected %#v, got %#v", want, result)
	}
}

func TestRun_Degraded(t *testing.T) {
	req := operation.CodeRequest{Code: "x=1", Language: "python", TargetLanguage: "go"}
	isCallError := func(err error) bool {
		var ce *provider.CallError
		return errors.As(err, &ce)
	}
	isNoCandidates := func(err error) bool { return errors.Is(err, provider.ErrNoCandidates) }

	tests := []struct {
		name    string
		err     error
		op      operation.Operation
		want    operation.Result
		checkFn func(error) bool
	}{
		{
			name:    "credential rejected on analyze",
			err:     &provider.CredentialError{Model: "m", Err: errors.New("API key not valid: sk-secret")},
			op:      operation.Analyze,
			want:    operation.AnalysisResult{TimeComplexity: "Unknown", SpaceComplexity: "Unknown", Explanation: "Error: " + MsgCredentialRejected},
			checkFn: provider.IsCredentialError,
		},
		{
			name:    "exhausted on explain",
			err:     &provider.ExhaustedError{Attempts: 4, Last: errors.New("quota")},
			op:      operation.Explain,
			want:    operation.ExplanationResult{Explanation: "Error: " + MsgAllModelsFailed},
			checkFn: provider.IsExhausted,
		},
		{
			name:    "other failure on convert",
			err:     &provider.CallError{Model: "m", Err: errors.New("boom")},
			op:      operation.Convert,
			want:    operation.ConversionResult{ConvertedCode: "x=1", TargetLanguage: "go", Error: MsgGenerationFailed},
			checkFn: isCallError,
		},
		{
			name:    "no candidates on optimize",
			err:     provider.ErrNoCandidates,
			op:      operation.Optimize,
			checkFn: isNoCandidates,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := usage.NewRecorder(nil)
			svc := New(&spyInvoker{err: tt.err}, Options{Usage: recorder, Secrets: []string{"sk-secret"}})

			result, err := svc.Run(context.Background(), tt.op, req)
			if !tt.checkFn(err) {
				t.Errorf("unexpected error %v", err)
			}
			if result == nil {
				t.Fatal("expected a degraded result")
			}
			if tt.want != nil {
				if opt, ok := result.(operation.OptimizationResult); ok {
					t.Fatalf("unexpected optimize result %#v", opt)
				}
				if result != tt.want {
					t.Errorf("expected %#v, got %#v", tt.want, result)
				}
			} else {
				opt := result.(operation.OptimizationResult)
				if opt.OptimizedCode != "x=1" || len(opt.Improvements) != 1 || opt.Improvements[0] != "Error: "+MsgNoModels {
					t.Errorf("unexpected optimize result %#v", opt)
				}
			}

			c := recorder.Counters()
			if c.TotalRequests != 1 || c.FailureCount != 1 || c.DegradedCount != 1 {
				t.Errorf("unexpected counters %+v", c)
			}
		})
	}
}

func TestRun_RecordsUsage(t *testing.T) {
	recorder := usage.NewRecorder(nil)
	observer := &outcomeSpy{}
	svc := New(&spyInvoker{text: "fine"}, Options{Usage: recorder, Observer: observer})

	for i := 0; i < 3; i++ {
		if _, err := svc.Explain(context.Background(), operation.CodeRequest{Code: "x", Language: "go"}); err != nil {
			t.Fatal(err)
		}
	}
	c := recorder.Counters()
	if c.TotalRequests != 3 || c.SuccessCount != 3 || c.TotalTokens != 30 {
		t.Errorf("unexpected counters %+v", c)
	}
	if len(observer.outcomes) != 3 || observer.outcomes[0] != "explain:success" {
		t.Errorf("unexpected outcomes %v", observer.outcomes)
	}
}

func TestRun_UnknownOperation(t *testing.T) {
	spy := &spyInvoker{}
	if _, err := New(spy, Options{}).Run(context.Background(), operation.Operation("refactor"), operation.CodeRequest{Code: "x", Language: "go"}); err == nil {
		t.Fatal("expected error for unknown operation")
	}
	if spy.calls.Load() != 0 {
		t.Error("invoker must not be called")
	}
}

func TestFailureMessage_NeverEchoesUpstream(t *testing.T) {
	err := &provider.CallError{Model: "m", Err: errors.New("key=sk-secret rejected")}
	if msg := FailureMessage(err); strings.Contains(msg, "sk-secret") {
		t.Errorf("message leaks upstream text: %q", msg)
	}
}

// captureBackend keeps enqueued usage records in memory.
type captureBackend struct {
	records []usage.UsageRecord
}

func (b *captureBackend) Enqueue(r usage.UsageRecord) { b.records = append(b.records, r) }
func (b *captureBackend) Flush(context.Context) error { return nil }
func (b *captureBackend) QueryGlobalStats(context.Context, time.Time) (*usage.AggregatedStats, error) {
	return nil, nil
}
func (b *captureBackend) QueryDailyStats(context.Context, time.Time) ([]usage.DailyStats, error) {
	return nil, nil
}
func (b *captureBackend) QueryModelStats(context.Context, time.Time) ([]usage.ModelStats, error) {
	return nil, nil
}
func (b *captureBackend) QueryOperationStats(context.Context, time.Time) ([]usage.OperationStats, error) {
	return nil, nil
}
func (b *captureBackend) Cleanup(context.Context, time.Time) (int64, error) { return 0, nil }
func (b *captureBackend) Start() error                                      { return nil }
func (b *captureBackend) Stop() error                                       { return nil }

func TestRun_DegradedRecordsFailedModel(t *testing.T) {
	req := operation.CodeRequest{Code: "x=1", Language: "python", TargetLanguage: "go"}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"credential", &provider.CredentialError{Model: "model-a", Err: errors.New("denied")}, "model-a"},
		{"call error", &provider.CallError{Model: "model-b", Err: errors.New("boom")}, "model-b"},
		{"exhausted", &provider.ExhaustedError{Attempts: 2, LastModel: "model-c", Last: errors.New("quota")}, "model-c"},
		{"no candidates", provider.ErrNoCandidates, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &captureBackend{}
			svc := New(&spyInvoker{err: tt.err}, Options{Usage: usage.NewRecorder(backend)})

			if _, err := svc.Convert(context.Background(), req); err == nil {
				t.Fatal("expected error")
			}
			if len(backend.records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(backend.records))
			}
			if rec := backend.records[0]; rec.Model != tt.want || !rec.Degraded {
				t.Errorf("expected degraded record for %q, got %+v", tt.want, rec)
			}
		})
	}
}
