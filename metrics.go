package tropiiify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts export progress. A nil *Metrics is a no-op.
type Metrics struct {
	registry   *prometheus.Registry
	items      *prometheus.CounterVec
	photos     prometheus.Counter
	derivative prometheus.Histogram
	duration   prometheus.Gauge
}

// NewMetrics registers the export collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tropiiify",
			Name:      "items_total",
			Help:      "Items processed, by outcome.",
		}, []string{"status"}),
		photos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tropiiify",
			Name:      "photos_total",
			Help:      "Photos whose derivatives were written.",
		}),
		derivative: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tropiiify",
			Name:      "derivative_duration_seconds",
			Help:      "Time to produce all derivatives of one photo.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tropiiify",
			Name:      "export_duration_seconds",
			Help:      "Wall time of the last export run.",
		}),
	}
	m.registry.MustRegister(m.items, m.photos, m.derivative, m.duration)
	return m
}

// Registry exposes the collectors, e.g. for a /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) itemDone(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.items.WithLabelValues(status).Inc()
}

func (m *Metrics) observeDerivative(d time.Duration) {
	if m == nil {
		return
	}
	m.photos.Inc()
	m.derivative.Observe(d.Seconds())
}

func (m *Metrics) exportDone(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Set(d.Seconds())
}

// WriteTextfile writes the collectors in Prometheus text format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
