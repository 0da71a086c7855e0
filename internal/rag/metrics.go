package rag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks query outcomes for the /metrics endpoint.
type Metrics struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
	sources  prometheus.Histogram
}

// NewMetrics registers the RAG collectors on the given registerer. Pass
// prometheus.DefaultRegisterer in production, a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rag_queries_total",
			Help: "RAG queries handled, by final status.",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rag_query_duration_seconds",
			Help:    "End-to-end RAG query latency.",
			Buckets: prometheus.DefBuckets,
		}),
		sources: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rag_query_sources",
			Help:    "Number of sources cited per successful answer.",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 10},
		}),
	}
}

func (m *Metrics) observe(status Status, seconds float64, sources int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(string(status)).Inc()
	m.duration.Observe(seconds)
	if status == StatusSuccess {
		m.sources.Observe(float64(sources))
	}
}
