package storage_benchmark

import (
	"strconv"
	"time"

	"github.com/boreq/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports every operation observed by the harness as Prometheus
// metrics.
type Metrics struct {
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storage_benchmark",
				Name:      "operation_duration_seconds",
				Help:      "Duration of put and get operations.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
			},
			[]string{"backend", "operation", "file_size_mb"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storage_benchmark",
				Name:      "transferred_bytes_total",
				Help:      "Bytes written and read.",
			},
			[]string{"backend", "operation"},
		),
	}

	for _, collector := range []prometheus.Collector{m.duration, m.bytes} {
		if err := registerer.Register(collector); err != nil {
			return nil, errors.Wrap(err, "error registering a collector")
		}
	}

	return m, nil
}

func (m *Metrics) OnPut(backend string, fileSizeMB int, bytes int, elapsed time.Duration) {
	m.observe(backend, "put", fileSizeMB, bytes, elapsed)
}

func (m *Metrics) OnGet(backend string, fileSizeMB int, bytes int, elapsed time.Duration) {
	m.observe(backend, "get", fileSizeMB, bytes, elapsed)
}

func (m *Metrics) observe(backend, operation string, fileSizeMB int, bytes int, elapsed time.Duration) {
	m.duration.WithLabelValues(backend, operation, strconv.Itoa(fileSizeMB)).Observe(elapsed.Seconds())
	m.bytes.WithLabelValues(backend, operation).Add(float64(bytes))
}
