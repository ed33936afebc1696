package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Default namespace for all metrics
	namespace = "reqlogger"
)

// PrometheusMetrics holds all the Prometheus metrics for the request logger
type PrometheusMetrics struct {
	gatherer         prometheus.Gatherer
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	bodyErrorsTotal  *prometheus.CounterVec
	bodyBytes        prometheus.Histogram
	inFlightRequests prometheus.Gauge
}

// NewPrometheusMetrics creates a new set of Prometheus metrics.
// A nil registry registers with the process default.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if registry != nil {
		reg = registry
		gatherer = registry
	}

	factory := promauto.With(reg)

	return &PrometheusMetrics{
		gatherer: gatherer,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests answered by the request logger",
			},
			[]string{"method", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Time spent reading, logging and answering a request in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		bodyErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "body_errors_total",
				Help:      "Total number of request bodies that could not be read or decoded",
			},
			[]string{"reason"},
		),
		bodyBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "body_bytes",
				Help:      "Size of received request bodies as sent on the wire",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
			},
		),
		inFlightRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "in_flight_requests",
				Help:      "Number of requests currently being processed",
			},
		),
	}
}

// RecordRequest records metrics for a completed request
func (p *PrometheusMetrics) RecordRequest(method string, status string, duration time.Duration) {
	p.requestsTotal.WithLabelValues(method, status).Inc()
	p.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordBodyError records a body that failed to read or decode
func (p *PrometheusMetrics) RecordBodyError(reason string) {
	p.bodyErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordBodySize records the wire size of a request body
func (p *PrometheusMetrics) RecordBodySize(n int) {
	p.bodyBytes.Observe(float64(n))
}

// RequestStarted increments the gauge for in-flight requests
func (p *PrometheusMetrics) RequestStarted() {
	p.inFlightRequests.Inc()
}

// RequestFinished decrements the gauge for in-flight requests
func (p *PrometheusMetrics) RequestFinished() {
	p.inFlightRequests.Dec()
}

// Handler serves the metrics gathered from this set's registry
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
