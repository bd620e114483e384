package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	submissionsTotal *prometheus.CounterVec
	bulkOutcomes     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidence",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evidence",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "evidence",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidence",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Document submissions by result.",
		},
		[]string{"service", "result"},
	)
	bulkOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evidence",
			Subsystem: "review",
			Name:      "bulk_outcomes_total",
			Help:      "Per-id outcomes of bulk review operations.",
		},
		[]string{"service", "operation", "result"},
	)

	registry.MustRegister(requestTotal, requestDuration, requestInFlight, submissionsTotal, bulkOutcomes)

	return &HTTPServerMetrics{
		registry:         registry,
		service:          service,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		submissionsTotal: submissionsTotal,
		bulkOutcomes:     bulkOutcomes,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments every request. Path is the route pattern, not the
// raw URL, to keep cardinality bounded.
func (m *HTTPServerMetrics) Middleware(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		start := time.Now()
		recorder := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(m.service, r.Method, path, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) ObserveSubmission(result string) {
	m.submissionsTotal.WithLabelValues(m.service, result).Inc()
}

func (m *HTTPServerMetrics) ObserveBulkOutcome(operation, result string) {
	m.bulkOutcomes.WithLabelValues(m.service, operation, result).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
