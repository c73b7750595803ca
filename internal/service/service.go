// Package service runs the code operations: validate, build the prompt,
// invoke the model fallback chain and normalize the reply.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/metrics"
	"github.com/FahadBinHussain/Xenovate/internal/operation"
	"github.com/FahadBinHussain/Xenovate/internal/provider"
	"github.com/FahadBinHussain/Xenovate/internal/usage"
	"github.com/FahadBinHussain/Xenovate/internal/util"
)

// Messages surfaced in degraded results. Raw upstream text is only logged.
const (
	MsgCredentialRejected = "API key error. Please check your configuration."
	MsgAllModelsFailed    = "All AI models failed to respond"
	MsgNoModels           = "No AI models are configured"
	MsgGenerationFailed   = "Failed to generate a response from the AI model"
)

// Invoker is the model layer as seen by the service.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (provider.Generation, error)
}

// OperationObserver is told the outcome of every run.
type OperationObserver interface {
	ObserveOperation(operation, outcome string)
}

// Options configures a Service. Every field is optional.
type Options struct {
	// Configured reports whether an upstream credential is present. Nil
	// means always configured.
	Configured func() bool
	// Secrets are redacted from logged error text.
	Secrets []string
	// Provider labels usage records.
	Provider string
	Usage    *usage.Recorder
	Observer OperationObserver
}

// Service is the single generic operation runner.
type Service struct {
	invoker     Invoker
	descriptors map[operation.Operation]descriptor
	configured  func() bool
	secrets     []string
	provider    string
	usage       *usage.Recorder
	observer    OperationObserver
}

// New returns a Service backed by invoker.
func New(invoker Invoker, opts Options) *Service {
	s := &Service{
		invoker:     invoker,
		descriptors: defaultDescriptors(),
		configured:  opts.Configured,
		secrets:     opts.Secrets,
		provider:    opts.Provider,
		usage:       opts.Usage,
		observer:    opts.Observer,
	}
	if s.configured == nil {
		s.configured = func() bool { return true }
	}
	return s
}

// Run executes op for req.
//
// A malformed request yields (nil, *operation.ValidationError) and a missing
// credential (nil, operation.ErrNotConfigured); neither reaches the model.
// When the model layer fails, Run returns a fully populated degraded result
// together with the invoker's error so callers can pick a status code.
// Otherwise the normalized result and a nil error are returned.
func (s *Service) Run(ctx context.Context, op operation.Operation, req operation.CodeRequest) (operation.Result, error) {
	d, ok := s.descriptors[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", op)
	}
	if err := req.Validate(op); err != nil {
		s.observe(op, metrics.OutcomeRejected)
		return nil, err
	}
	if !s.configured() {
		s.observe(op, metrics.OutcomeNotConfig)
		return nil, operation.ErrNotConfigured
	}

	start := time.Now()
	gen, err := s.invoker.Invoke(ctx, d.prompt(req))
	rec := usage.UsageRecord{
		Operation:    op.String(),
		Model:        gen.Model,
		Provider:     s.provider,
		RequestedAt:  start,
		LatencyMs:    time.Since(start).Milliseconds(),
		PromptTokens: gen.Usage.PromptTokens,
		OutputTokens: gen.Usage.OutputTokens,
		TotalTokens:  gen.Usage.TotalTokens,
	}

	if err != nil {
		log.WithField("operation", op.String()).
			Errorf("operation degraded: %s", util.RedactSecret(err.Error(), s.secrets...))
		rec.Failed, rec.Degraded = true, true
		rec.Model = provider.FailedModel(err)
		s.usage.Record(rec)
		s.observe(op, metrics.OutcomeDegraded)
		return operation.Degraded(op, req, FailureMessage(err)), err
	}

	result := d.normalize(gen.Text, req)
	s.usage.Record(rec)
	s.observe(op, metrics.OutcomeSuccess)
	return result, nil
}

// Analyze runs the analyze operation.
func (s *Service) Analyze(ctx context.Context, req operation.CodeRequest) (operation.Result, error) {
	return s.Run(ctx, operation.Analyze, req)
}

// Optimize runs the optimize operation.
func (s *Service) Optimize(ctx context.Context, req operation.CodeRequest) (operation.Result, error) {
	return s.Run(ctx, operation.Optimize, req)
}

// Convert runs the convert operation.
func (s *Service) Convert(ctx context.Context, req operation.CodeRequest) (operation.Result, error) {
	return s.Run(ctx, operation.Convert, req)
}

// Explain runs the explain operation.
func (s *Service) Explain(ctx context.Context, req operation.CodeRequest) (operation.Result, error) {
	return s.Run(ctx, operation.Explain, req)
}

// FailureMessage maps an invoker error to its fixed user-facing message.
func FailureMessage(err error) string {
	switch {
	case provider.IsCredentialError(err):
		return MsgCredentialRejected
	case provider.IsExhausted(err):
		return MsgAllModelsFailed
	case errors.Is(err, provider.ErrNoCandidates):
		return MsgNoModels
	default:
		return MsgGenerationFailed
	}
}

func (s *Service) observe(op operation.Operation, outcome string) {
	if s.observer != nil {
		s.observer.ObserveOperation(op.String(), outcome)
	}
}
