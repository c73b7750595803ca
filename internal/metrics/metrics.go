// Package metrics exposes prometheus collectors for operation runs and
// upstream model calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "xenovate"

// Operation outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeDegraded  = "degraded"
	OutcomeRejected  = "rejected"
	OutcomeNotConfig = "not_configured"
)

// Collector owns a private registry so tests and multiple servers in one
// process never collide on registration.
type Collector struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	modelCalls   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	excluded     prometheus.Gauge
}

// New registers all collectors, including the Go runtime and process ones.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_requests_total",
			Help:      "Operation runs by operation and outcome.",
		}, []string{"operation", "outcome"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Upstream generation calls by model and result.",
		}, []string{"model", "result"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Latency of upstream generation calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		}, []string{"model"}),
		excluded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quota_excluded_models",
			Help:      "Models currently excluded after a quota failure.",
		}),
	}
	c.registry.MustRegister(
		c.operations,
		c.modelCalls,
		c.callDuration,
		c.excluded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveCall records one upstream call.
func (c *Collector) ObserveCall(model, result string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.modelCalls.WithLabelValues(model, result).Inc()
	c.callDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// ObserveExclusions sets the size of the quota exclusion set.
func (c *Collector) ObserveExclusions(n int) {
	if c == nil {
		return
	}
	c.excluded.Set(float64(n))
}

// ObserveOperation counts one service run.
func (c *Collector) ObserveOperation(operation, outcome string) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(operation, outcome).Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
