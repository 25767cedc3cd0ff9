package persistence

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/torosent/variantbench/internal/metrics"
)

const metricsNamespace = "variantbench"

// latencyBuckets spans 1ms to ~32s, covering the full request timeout.
var latencyBuckets = prometheus.ExponentialBuckets(0.001, 2, 16)

// RunMetrics holds the per-endpoint series exported for one run.
type RunMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	success  *prometheus.GaugeVec
}

// NewRunMetrics creates the series on a private registry.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Attempts per endpoint by result (success, an error kind, or http_<status>).",
		}, []string{"endpoint", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of successful attempts.",
			Buckets:   latencyBuckets,
		}, []string{"endpoint"}),
		success: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "success_rate_percent",
			Help:      "Share of scheduled attempts that returned HTTP 200.",
		}, []string{"endpoint"}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.success)
	return m
}

// Observe adds one endpoint's outcomes and aggregate.
func (m *RunMetrics) Observe(stats metrics.EndpointStats, outcomes []metrics.Outcome) {
	name := stats.EndpointName
	for _, o := range outcomes {
		m.requests.WithLabelValues(name, resultLabel(o)).Inc()
		if o.Success {
			m.latency.WithLabelValues(name).Observe(o.LatencyMs / 1000)
		}
	}
	m.success.WithLabelValues(name).Set(stats.SuccessRate)
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in node_exporter textfile format.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write prometheus textfile: %w", err)
	}
	return nil
}

func resultLabel(o metrics.Outcome) string {
	switch {
	case o.Success:
		return "success"
	case o.HasResponse():
		return "http_" + strconv.Itoa(o.StatusCode)
	case o.ErrorKind != "":
		return string(o.ErrorKind)
	default:
		return string(metrics.ErrorKindUnexpected)
	}
}
