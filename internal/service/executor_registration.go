package service

import (
	"context"
	"fmt"

	"github.com/FahadBinHussain/Xenovate/internal/config"
	"github.com/FahadBinHussain/Xenovate/internal/provider"
	"github.com/FahadBinHussain/Xenovate/internal/resilience"
	"github.com/FahadBinHussain/Xenovate/internal/runtime/executor"
)

// NewGenerator builds the upstream generator selected by cfg.Upstream.Type.
// No network call is made.
func NewGenerator(ctx context.Context, cfg *config.Config) (provider.Generator, error) {
	up := cfg.Upstream
	httpClient, err := resilience.NewHTTPClient(up.ProxyURL, up.CallTimeout())
	if err != nil {
		return nil, fmt.Errorf("upstream http client: %w", err)
	}

	switch up.Type {
	case config.UpstreamGemini, "":
		return executor.NewGeminiGenerator(ctx, executor.GeminiConfig{
			APIKey:     up.APIKey,
			BaseURL:    up.BaseURL,
			HTTPClient: httpClient,
		})
	case config.UpstreamOpenAI:
		return executor.NewOpenAIGenerator(executor.OpenAIConfig{
			APIKey:     up.APIKey,
			BaseURL:    up.BaseURL,
			HTTPClient: httpClient,
		})
	default:
		return nil, fmt.Errorf("unknown upstream type %q", up.Type)
	}
}

// BreakerConfigFrom returns the per-model breaker settings, or nil when the
// breaker is disabled.
func BreakerConfigFrom(cfg *config.Config) *resilience.BreakerConfig {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}
	bc := resilience.DefaultBreakerConfig("")
	if cfg.CircuitBreaker.FailureThreshold > 0 {
		bc.FailureThreshold = cfg.CircuitBreaker.FailureThreshold
	}
	if cfg.CircuitBreaker.MinRequests > 0 {
		bc.MinRequests = cfg.CircuitBreaker.MinRequests
	}
	bc.Timeout = cfg.BreakerTimeout()
	return &bc
}
