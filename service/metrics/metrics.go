package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// It is passed explicitly to every component that records metrics.
type Metrics struct {
	// Sui RPC
	suiRPCCallsTotal   *prometheus.CounterVec
	suiRPCCallDuration *prometheus.HistogramVec
	suiRPCRetries      *prometheus.CounterVec

	// Translation
	translationsTotal   *prometheus.CounterVec
	translationDuration *prometheus.HistogramVec

	// Enrichment (indexer + LLM)
	llmRequestsTotal        *prometheus.CounterVec
	llmRequestDuration      *prometheus.HistogramVec
	enrichmentFailuresTotal *prometheus.CounterVec

	// Translation cache
	cacheLookupsTotal *prometheus.CounterVec

	// Workflows
	workflowDuration *prometheus.HistogramVec

	// Database
	dbQueryDuration   *prometheus.HistogramVec
	dbOperationsTotal *prometheus.CounterVec

	// HTTP
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	// NATS
	natsMessagesPublished *prometheus.CounterVec
	natsPublishDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		suiRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sui_rpc_calls_total",
				Help: "Total number of Sui RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		suiRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sui_rpc_call_duration_seconds",
				Help:    "Duration of Sui RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		suiRPCRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sui_rpc_retries_total",
				Help: "Total number of Sui RPC retry attempts",
			},
			[]string{"method", "reason"},
		),

		translationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translations_total",
				Help: "Total number of translated transactions by classified type and status",
			},
			[]string{"type", "status"},
		),
		translationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "translation_duration_seconds",
				Help:    "Duration of the translation step in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"type"},
		),

		llmRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total number of LLM explanation requests",
			},
			[]string{"mode", "status"},
		),
		llmRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Duration of LLM explanation requests in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"mode"},
		),
		enrichmentFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrichment_failures_total",
				Help: "Total number of non-fatal enrichment failures by source",
			},
			[]string{"source"},
		),

		cacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translation_cache_lookups_total",
				Help: "Total number of translation cache lookups by result",
			},
			[]string{"result"},
		),

		workflowDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "explain_activity_duration_seconds",
				Help:    "Duration of explain workflow activities in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"activity", "status"},
		),

		dbQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Duration of database queries in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"operation", "table"},
		),
		dbOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 10, 30},
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),

		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published",
			},
			[]string{"subject", "status"},
		),
		natsPublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nats_publish_duration_seconds",
				Help:    "Duration of NATS publish operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"subject"},
		),
	}
}

// Sui RPC metric helpers

// RecordRPCCall records a Sui RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.suiRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.suiRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordRPCRetry records a retry attempt.
func (m *Metrics) RecordRPCRetry(method, reason string) {
	m.suiRPCRetries.WithLabelValues(method, reason).Inc()
}

// Translation metric helpers

// RecordTranslation records one translated transaction.
func (m *Metrics) RecordTranslation(txType, status string, duration float64) {
	m.translationsTotal.WithLabelValues(txType, status).Inc()
	m.translationDuration.WithLabelValues(txType).Observe(duration)
}

// RecordLLMRequest records an LLM explanation request.
func (m *Metrics) RecordLLMRequest(mode, status string, duration float64) {
	m.llmRequestsTotal.WithLabelValues(mode, status).Inc()
	m.llmRequestDuration.WithLabelValues(mode).Observe(duration)
}

// RecordEnrichmentFailure records a swallowed enrichment failure.
func (m *Metrics) RecordEnrichmentFailure(source string) {
	m.enrichmentFailuresTotal.WithLabelValues(source).Inc()
}

// RecordCacheLookup records a translation cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordActivityDuration records workflow activity duration.
func (m *Metrics) RecordActivityDuration(activity, status string, duration float64) {
	m.workflowDuration.WithLabelValues(activity, status).Observe(duration)
}

// Database metric helpers

// RecordDBQuery records a database query with duration.
func (m *Metrics) RecordDBQuery(operation, table string, duration float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.dbQueryDuration.WithLabelValues(operation, table).Observe(duration)
	m.dbOperationsTotal.WithLabelValues(operation, status).Inc()
}

// HTTP metric helpers

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
}

// NATS metric helpers

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string, duration float64) {
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
	m.natsPublishDuration.WithLabelValues(subject).Observe(duration)
}

func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
