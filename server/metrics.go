package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded by solfilter_requests_total
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeTimeout  = "timeout"
)

// Metrics holds the labeling metrics of one server. Each server owns its
// registry so that tests can run servers side by side.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	batchSize prometheus.Histogram
	duration  prometheus.Histogram
}

// NewMetrics creates and registers the server metrics
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solfilter",
			Name:      "requests_total",
			Help:      "Labeling requests by outcome",
		}, []string{"outcome"}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "solfilter",
			Name:      "batch_size",
			Help:      "Solutions per labeling request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 13),
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "solfilter",
			Name:      "label_duration_seconds",
			Help:      "Time spent labeling a batch",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Observe records one labeling request
func (m *Metrics) Observe(outcome string, batch int, seconds float64) {
	m.requests.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.batchSize.Observe(float64(batch))
		m.duration.Observe(seconds)
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
