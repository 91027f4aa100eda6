package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generationsTotal *prometheus.CounterVec
	latencyMs        *prometheus.HistogramVec
	normalizedTotal  *prometheus.CounterVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		generationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_crm_generations_total",
			Help: "Outbound model generations by model, wire family and outcome.",
		}, []string{"model", "family", "outcome"}),
		latencyMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_crm_generation_latency_ms",
			Help:    "Outbound model generation latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000},
		}, []string{"model", "family", "outcome"}),
		normalizedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_crm_normalizations_total",
			Help: "Normalized model outputs by kind and the recovery stage that produced them.",
		}, []string{"kind", "stage"}),
	}
	r.MustRegister(
		m.generationsTotal,
		m.latencyMs,
		m.normalizedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveGeneration(model, family, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.generationsTotal.WithLabelValues(model, family, outcome).Inc()
	m.latencyMs.WithLabelValues(model, family, outcome).Observe(float64(dur.Milliseconds()))
}

func (m *Metrics) ObserveNormalization(kind, stage string) {
	if m == nil {
		return
	}
	m.normalizedTotal.WithLabelValues(kind, stage).Inc()
}
