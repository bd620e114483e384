package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks the document pipeline from the worker's point of
// view: outcomes by final status, durations and in-flight count.
type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	validationTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidence",
			Subsystem: "pipeline",
			Name:      "documents_processed_total",
			Help:      "Processed documents by outcome.",
		},
		[]string{"service", "outcome"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evidence",
			Subsystem: "pipeline",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "evidence",
			Subsystem: "pipeline",
			Name:      "documents_in_flight",
			Help:      "Number of documents currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	validationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidence",
			Subsystem: "validation",
			Name:      "rule_results_total",
			Help:      "Validation rule results by rule type and status.",
		},
		[]string{"service", "rule_type", "status"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, validationTotal)

	return &WorkerMetrics{
		registry:        registry,
		service:         service,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		validationTotal: validationTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(outcome string, duration time.Duration) {
	m.processInFlight.Dec()
	m.processTotal.WithLabelValues(m.service, outcome).Inc()
	m.processDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveRuleResult(ruleType, status string) {
	m.validationTotal.WithLabelValues(m.service, ruleType, status).Inc()
}
