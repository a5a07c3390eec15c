package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fibfill"

// Metrics holds the Prometheus collectors of a run. Each instance owns its
// registry so several instances can coexist in one process (tests).
type Metrics struct {
	registry     *prometheus.Registry
	bytesWritten prometheus.Counter
	terms        prometheus.Counter
	destinations *prometheus.CounterVec
	active       prometheus.Gauge
	duration     prometheus.Histogram
	handler      http.Handler
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes accepted by destinations.",
		}),
		terms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terms_written_total",
			Help:      "Fibonacci terms written to destinations.",
		}),
		destinations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "destinations_total",
			Help:      "Destinations processed, by outcome.",
		}, []string{"status"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_destinations",
			Help:      "Destinations currently being generated.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "destination_duration_seconds",
			Help:      "Time spent generating one destination.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	reg.MustRegister(
		m.bytesWritten, m.terms, m.destinations, m.active, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// DestinationStarted marks one more destination in flight.
func (m *Metrics) DestinationStarted() { m.active.Inc() }

// DestinationFinished records the outcome of a destination.
func (m *Metrics) DestinationFinished(status string, bytes int64, terms uint64, d time.Duration) {
	m.active.Dec()
	m.destinations.WithLabelValues(status).Inc()
	if bytes > 0 {
		m.bytesWritten.Add(float64(bytes))
	}
	m.terms.Add(float64(terms))
	m.duration.Observe(d.Seconds())
}

// DestinationSkipped records a destination that was never started.
func (m *Metrics) DestinationSkipped() {
	m.destinations.WithLabelValues("skipped").Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WritePrometheus writes the metrics in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
