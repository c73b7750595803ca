// Package provider implements the model invoker: an ordered fallback across
// candidate models with quota exclusion and per-model circuit breakers.
package provider

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/FahadBinHussain/Xenovate/internal/config"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/resilience"
)

// DefaultCallTimeout bounds one upstream call when Options.Timeout is zero.
const DefaultCallTimeout = 120 * time.Second

// GenerationConfig holds the sampling parameters sent with every call.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// Usage is the token accounting reported by the upstream, when available.
type Usage struct {
	PromptTokens int64
	OutputTokens int64
	TotalTokens  int64
}

// Generation is a successful upstream reply.
type Generation struct {
	Model string
	Text  string
	Usage Usage
}

// Generator performs a single text generation against one model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, cfg GenerationConfig) (Generation, error)
}

// CallObserver receives one event per upstream call. Result is "success" or
// the ErrorCategory string of the failure.
type CallObserver interface {
	ObserveCall(model, result string, elapsed time.Duration)
	ObserveExclusions(n int)
}

// ResultSuccess is the observer result label for a successful call.
const ResultSuccess = "success"

type nopObserver struct{}

func (nopObserver) ObserveCall(string, string, time.Duration) {}
func (nopObserver) ObserveExclusions(int)                     {}

// Options configures an Invoker. Zero values select defaults.
type Options struct {
	Generation GenerationConfig
	Timeout    time.Duration
	Classifier Classifier
	// Exclusions is shared state; pass a fresh set per test.
	Exclusions *ExclusionSet
	// Breaker enables per-model circuit breakers when non-nil. Name and
	// IsSuccessful are filled in per model.
	Breaker  *resilience.BreakerConfig
	Observer CallObserver
}

// Invoker tries candidate models in priority order until one succeeds.
type Invoker struct {
	gen        Generator
	candidates []config.ModelCandidate
	genCfg     GenerationConfig
	timeout    time.Duration
	classify   Classifier
	exclusions *ExclusionSet
	breakers   map[string]*resilience.CircuitBreaker
	stats      *ModelStats
	observer   CallObserver
	probes     singleflight.Group
}

// NewInvoker builds an invoker over candidates. The list is copied and
// sorted by priority; ties keep their given order.
func NewInvoker(gen Generator, candidates []config.ModelCandidate, opts Options) *Invoker {
	sorted := config.SanitizeModels(slices.Clone(candidates))

	inv := &Invoker{
		gen:        gen,
		candidates: sorted,
		genCfg:     opts.Generation,
		timeout:    opts.Timeout,
		classify:   opts.Classifier,
		exclusions: opts.Exclusions,
		stats:      NewModelStats(),
		observer:   opts.Observer,
	}
	if inv.timeout <= 0 {
		inv.timeout = DefaultCallTimeout
	}
	if inv.classify == nil {
		inv.classify = DefaultClassifier
	}
	if inv.exclusions == nil {
		inv.exclusions = NewExclusionSet()
	}
	if inv.observer == nil {
		inv.observer = nopObserver{}
	}
	if opts.Breaker != nil {
		inv.breakers = make(map[string]*resilience.CircuitBreaker, len(sorted))
		for _, c := range sorted {
			bc := *opts.Breaker
			bc.Name = c.Name
			bc.IsSuccessful = func(err error) bool {
				return err == nil || inv.classify(err) != CategoryOther
			}
			inv.breakers[c.Name] = resilience.NewCircuitBreaker(bc)
		}
	}
	return inv
}

// Candidates returns the priority-ordered candidate list.
func (inv *Invoker) Candidates() []config.ModelCandidate {
	return slices.Clone(inv.candidates)
}

// Exclusions exposes the quota exclusion set.
func (inv *Invoker) Exclusions() *ExclusionSet { return inv.exclusions }

// Invoke sends prompt to the first usable candidate and returns its reply.
//
// Quota failures exclude the model and fall through to the next candidate.
// Any other failure aborts: a credential rejection returns *CredentialError,
// anything else *CallError. When every candidate fails on quota the result is
// *ExhaustedError. Each candidate is called at most once.
func (inv *Invoker) Invoke(ctx context.Context, prompt string) (Generation, error) {
	candidates := inv.usableCandidates()
	if len(candidates) == 0 {
		return Generation{}, ErrNoCandidates
	}

	var (
		attempts  int
		lastErr   error
		lastModel string
	)
	for _, c := range candidates {
		if attempts > 0 && ctx.Err() != nil {
			return Generation{}, &CallError{Model: c.Name, Err: context.Cause(ctx)}
		}

		log.Debugf("trying model: %s", c.Name)
		gen, called, err := inv.call(ctx, c.Name, prompt)
		if !called {
			log.Debugf("circuit open, skipping model: %s", c.Name)
			lastErr = err
			continue
		}
		attempts++
		lastModel = c.Name
		if err == nil {
			log.Debugf("success with model: %s", c.Name)
			return gen, nil
		}

		switch inv.classify(err) {
		case CategoryQuota:
			log.Debugf("quota exhausted for model: %s", c.Name)
			inv.exclusions.Add(c.Name)
			inv.observer.ObserveExclusions(inv.exclusions.Len())
			lastErr = err
		case CategoryCredential:
			return Generation{}, &CredentialError{Model: c.Name, Err: err}
		default:
			return Generation{}, &CallError{Model: c.Name, Err: err}
		}
	}
	return Generation{}, &ExhaustedError{Attempts: attempts, LastModel: lastModel, Last: lastErr}
}

// usableCandidates filters out quota-excluded models. When nothing is left
// the exclusion set is reset and the full list is returned.
func (inv *Invoker) usableCandidates() []config.ModelCandidate {
	out := make([]config.ModelCandidate, 0, len(inv.candidates))
	for _, c := range inv.candidates {
		if !inv.exclusions.Contains(c.Name) {
			out = append(out, c)
		}
	}
	if len(out) == 0 && len(inv.candidates) > 0 {
		log.Infof("all %d models excluded for quota, resetting exclusions", len(inv.candidates))
		inv.exclusions.Clear()
		inv.observer.ObserveExclusions(0)
		return slices.Clone(inv.candidates)
	}
	return out
}

// call performs one generation. The call runs detached from ctx's
// cancellation but bounded by the invoker timeout. called is false when the
// model's breaker rejected the call without reaching the upstream.
func (inv *Invoker) call(ctx context.Context, model, prompt string) (gen Generation, called bool, err error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), inv.timeout)
	defer cancel()

	fn := func() (any, error) {
		called = true
		return inv.gen.Generate(callCtx, model, prompt, inv.genCfg)
	}

	start := time.Now()
	var res any
	if breaker := inv.breakers[model]; breaker != nil {
		res, err = breaker.Execute(fn)
	} else {
		res, err = fn()
	}
	if !called {
		if err == nil {
			err = gobreaker.ErrOpenState
		}
		return Generation{}, false, err
	}
	elapsed := time.Since(start)

	if err != nil {
		inv.stats.RecordFailure(model)
		inv.observer.ObserveCall(model, inv.classify(err).String(), elapsed)
		return Generation{}, true, err
	}

	gen, _ = res.(Generation)
	if gen.Model == "" {
		gen.Model = model
	}
	inv.stats.RecordSuccess(model, elapsed)
	inv.observer.ObserveCall(model, ResultSuccess, elapsed)
	return gen, true, nil
}

// Model status values.
const (
	StatusAvailable     = "available"
	StatusQuotaExceeded = "quota_exceeded"
	StatusCircuitOpen   = "circuit_open"
	StatusNotAvailable  = "not_available"
	StatusError         = "error"
)

// ModelStatus describes one candidate for the status endpoint.
type ModelStatus struct {
	Name         string `json:"name"`
	Priority     int    `json:"priority"`
	Status       string `json:"status"`
	IsDefault    bool   `json:"isDefault"`
	Error        string `json:"error,omitempty"`
	SuccessCount int64  `json:"successCount"`
	FailureCount int64  `json:"failureCount"`
	AvgLatencyMs int64  `json:"avgLatencyMs"`
}

// Status reports the current state of every candidate without calling the
// upstream. The default model is the first one a new request would try.
func (inv *Invoker) Status() []ModelStatus {
	out := make([]ModelStatus, 0, len(inv.candidates))
	for _, c := range inv.candidates {
		snap := inv.stats.Snapshot(c.Name)
		st := ModelStatus{
			Name:         c.Name,
			Priority:     c.Priority,
			Status:       StatusAvailable,
			SuccessCount: snap.SuccessCount,
			FailureCount: snap.FailureCount,
			AvgLatencyMs: snap.AvgLatency.Milliseconds(),
		}
		switch {
		case inv.exclusions.Contains(c.Name):
			st.Status = StatusQuotaExceeded
		case inv.breakerOpen(c.Name):
			st.Status = StatusCircuitOpen
		}
		out = append(out, st)
	}
	markDefault(out)
	return out
}

// DefaultModel returns the name of the model a new request would try first.
func (inv *Invoker) DefaultModel() string {
	for _, st := range inv.Status() {
		if st.IsDefault {
			return st.Name
		}
	}
	return ""
}

func (inv *Invoker) breakerOpen(model string) bool {
	b := inv.breakers[model]
	return b != nil && b.State() == gobreaker.StateOpen
}

// markDefault flags the first available entry, or the first entry when none is.
func markDefault(statuses []ModelStatus) {
	if len(statuses) == 0 {
		return
	}
	for i := range statuses {
		if statuses[i].Status == StatusAvailable {
			statuses[i].IsDefault = true
			return
		}
	}
	statuses[0].IsDefault = true
}

// IsCredentialError reports whether err is a credential rejection.
func IsCredentialError(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

// IsExhausted reports whether err means every candidate failed on quota.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}
