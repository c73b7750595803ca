package service

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/FahadBinHussain/Xenovate/internal/config"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/metrics"
	"github.com/FahadBinHussain/Xenovate/internal/provider"
	"github.com/FahadBinHussain/Xenovate/internal/usage"
)

// Runtime bundles everything a front end (HTTP server or CLI) needs.
type Runtime struct {
	Config  *config.Config
	Invoker *provider.Invoker
	Service *Service
	Usage   *usage.Recorder
	Metrics *metrics.Collector
}

// NewRuntime wires the generator, invoker, usage ledger and metrics for cfg.
// A missing credential is not an error here: the service reports it per
// request.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	recorder, err := usage.Open(usage.BackendConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("usage ledger: %w", err)
	}
	if cfg.Usage.DSN != "" {
		log.Infof("usage ledger enabled (%s backend)", backendName(cfg.Usage.DSN))
	}

	return NewRuntimeWith(cfg, gen, recorder), nil
}

// NewRuntimeWith wires a runtime around an existing generator and recorder.
func NewRuntimeWith(cfg *config.Config, gen provider.Generator, recorder *usage.Recorder) *Runtime {
	collector := metrics.New()

	breaker := BreakerConfigFrom(cfg)
	if breaker != nil {
		breaker.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker for model %s: %s -> %s", name, from, to)
		}
	}

	invoker := provider.NewInvoker(gen, cfg.Models, provider.Options{
		Generation: provider.GenerationConfig{
			Temperature:     cfg.Generation.Temperature,
			TopP:            cfg.Generation.TopP,
			TopK:            cfg.Generation.TopK,
			MaxOutputTokens: cfg.Generation.MaxOutputTokens,
		},
		Timeout:  cfg.Upstream.CallTimeout(),
		Breaker:  breaker,
		Observer: collector,
	})

	svc := New(invoker, Options{
		Configured: cfg.CredentialConfigured,
		Secrets:    []string{cfg.Upstream.APIKey},
		Provider:   string(cfg.Upstream.Type),
		Usage:      recorder,
		Observer:   collector,
	})

	return &Runtime{
		Config:  cfg,
		Invoker: invoker,
		Service: svc,
		Usage:   recorder,
		Metrics: collector,
	}
}

// Close flushes the usage ledger.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return r.Usage.Close()
}

func backendName(dsn string) string {
	parsed, err := config.ParseDSN(dsn)
	if err != nil || parsed == nil {
		return "none"
	}
	return parsed.Backend
}
