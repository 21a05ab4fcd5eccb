package metrics

import (
	"net/http"

	"todays-meal/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes generation counters and latencies on a private registry.
type Collector struct {
	registry *prometheus.Registry

	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	tokens      *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generations_total",
				Help: "Generation calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "generation_duration_seconds",
				Help:    "Round trip time of generation calls",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"operation"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generation_tokens_total",
				Help: "Tokens consumed by generation calls",
			},
			[]string{"operation", "kind"},
		),
	}

	c.registry.MustRegister(c.generations, c.duration, c.tokens)
	return c
}

// Observe records one generation.
func (c *Collector) Observe(meta shared.GenerationMeta) {
	c.generations.WithLabelValues(meta.Operation, string(meta.Outcome)).Inc()
	c.duration.WithLabelValues(meta.Operation).Observe(meta.Latency.Seconds())
	c.tokens.WithLabelValues(meta.Operation, "prompt").Add(float64(meta.Usage.PromptTokens))
	c.tokens.WithLabelValues(meta.Operation, "completion").Add(float64(meta.Usage.CompletionTokens))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
