// Package metrics counts handled requests and exposes the totals on a
// listener separate from the request logger's own port.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zeek-r/go-reqlogger/internal/config"
)

// Collector feeds both the Prometheus metrics and the JSON stats
type Collector struct {
	prometheus *PrometheusMetrics
	stats      *Stats
}

// NewRegistry returns a registry carrying the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// NewCollector creates a collector registering with registry (nil for the default)
func NewCollector(registry *prometheus.Registry) *Collector {
	return &Collector{
		prometheus: NewPrometheusMetrics(registry),
		stats:      NewStats(),
	}
}

// RequestStarted marks a request as in flight
func (c *Collector) RequestStarted() {
	c.prometheus.RequestStarted()
}

// RequestFinished records a completed request with its response status
func (c *Collector) RequestFinished(method string, status int, duration time.Duration, bodyBytes int) {
	c.prometheus.RequestFinished()
	c.prometheus.RecordRequest(method, strconv.Itoa(status), duration)
	if bodyBytes > 0 {
		c.prometheus.RecordBodySize(bodyBytes)
	}
	c.stats.RecordRequest(duration, bodyBytes, status >= http.StatusBadRequest)
}

// BodyError records a body read or decode failure
func (c *Collector) BodyError(reason string) {
	c.prometheus.RecordBodyError(reason)
}

// Stats returns the JSON stats collector
func (c *Collector) Stats() *Stats {
	return c.stats
}

// NewMux registers the metrics endpoints configured in cfg
func NewMux(cfg config.MetricsConfig, c *Collector) *http.ServeMux {
	mux := http.NewServeMux()

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	mux.Handle(endpoint, c.prometheus.Handler())

	if cfg.Stats != "" {
		mux.HandleFunc(cfg.Stats, c.stats.Handler())
	}

	return mux
}
