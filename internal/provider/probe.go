package provider

import (
	"context"

	"golang.org/x/sync/errgroup"

	log "github.com/FahadBinHussain/Xenovate/internal/logging"
)

const (
	probePrompt        = "Hello"
	probeMaxTokens     = 16
	probeConcurrency   = 4
	msgNotAvailable    = "Model not available in your region or with your API key"
	msgProbeQuota      = "Quota exceeded for this model"
	msgProbeCredential = "API key error. Please check your configuration."
	msgProbeFailed     = "Model check failed"
)

// Probe sends a short generation to every candidate in parallel and reports
// what each one answered. Concurrent probes share one round of calls.
// Probe results do not touch the exclusion set or the breakers.
func (inv *Invoker) Probe(ctx context.Context) ([]ModelStatus, error) {
	v, err, shared := inv.probes.Do("probe", func() (any, error) {
		return inv.probeAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("model probe shared with in-flight request")
	}
	statuses := v.([]ModelStatus)
	out := make([]ModelStatus, len(statuses))
	copy(out, statuses)
	return out, nil
}

func (inv *Invoker) probeAll(ctx context.Context) ([]ModelStatus, error) {
	cfg := inv.genCfg
	cfg.MaxOutputTokens = probeMaxTokens

	out := make([]ModelStatus, len(inv.candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, c := range inv.candidates {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, inv.timeout)
			defer cancel()

			_, err := inv.gen.Generate(callCtx, c.Name, probePrompt, cfg)
			st := ModelStatus{Name: c.Name, Priority: c.Priority}
			st.Status, st.Error = inv.probeOutcome(err)
			if err != nil {
				log.Debugf("probe %s: %v", c.Name, err)
			}
			out[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	markDefault(out)
	return out, nil
}

func (inv *Invoker) probeOutcome(err error) (status, message string) {
	if err == nil {
		return StatusAvailable, ""
	}
	if isModelNotFound(err) {
		return StatusNotAvailable, msgNotAvailable
	}
	switch inv.classify(err) {
	case CategoryQuota:
		return StatusQuotaExceeded, msgProbeQuota
	case CategoryCredential:
		return StatusError, msgProbeCredential
	default:
		return StatusError, msgProbeFailed
	}
}
