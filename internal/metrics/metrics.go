package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Metamorph
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Schema cache metrics
	SchemaCacheHits   prometheus.Counter
	SchemaCacheMisses prometheus.Counter

	// Engine metrics
	ConversionsTotal      prometheus.CounterVec
	ConversionDuration    prometheus.Histogram
	TriggerEvaluations    prometheus.CounterVec
	FieldMutationsTotal   prometheus.CounterVec
	ConversionFieldsTotal prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metamorph_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "metamorph_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "metamorph_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		SchemaCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "metamorph_schema_cache_hits_total",
				Help: "Composed-schema memo hits",
			},
		),
		SchemaCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "metamorph_schema_cache_misses_total",
				Help: "Composed-schema memo misses",
			},
		),

		ConversionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metamorph_conversions_total",
				Help: "Conversion executions by source entity and outcome",
			},
			[]string{"source_entity", "outcome"},
		),
		ConversionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "metamorph_conversion_duration_seconds",
				Help:    "Conversion execution latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		TriggerEvaluations: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metamorph_trigger_evaluations_total",
				Help: "Trigger condition evaluations by result",
			},
			[]string{"result"},
		),
		FieldMutationsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metamorph_field_mutations_total",
				Help: "Extension field registry mutations by operation",
			},
			[]string{"operation"},
		),
		ConversionFieldsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metamorph_conversion_fields_total",
				Help: "Per-field conversion outcomes (converted vs skipped)",
			},
			[]string{"outcome"},
		),
	}
}
