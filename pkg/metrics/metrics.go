package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cfdump"

// Metrics holds the collectors updated while stores are opened and scanned.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Entries         *prometheus.CounterVec
	Bytes           *prometheus.CounterVec
	PartitionErrors *prometheus.CounterVec
	ScanDuration    *prometheus.HistogramVec
	OpenHandles     prometheus.Gauge
}

// New creates the collectors and registers them with reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Key/value entries read, by partition.",
		}, []string{"partition"}),
		Bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Key and value bytes read, by partition.",
		}, []string{"partition", "kind"}),
		PartitionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partition_errors_total",
			Help:      "Failed partition scans.",
		}, []string{"partition"}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "partition_scan_seconds",
			Help:      "Time spent scanning a partition.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"partition"}),
		OpenHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_handles",
			Help:      "Store and partition handles currently held.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Entries, m.Bytes, m.PartitionErrors, m.ScanDuration, m.OpenHandles)
	}
	return m
}

// ObserveEntry records one entry read from partition.
func (m *Metrics) ObserveEntry(partition string, key, value []byte) {
	if m == nil {
		return
	}
	m.Entries.WithLabelValues(partition).Inc()
	m.Bytes.WithLabelValues(partition, "key").Add(float64(len(key)))
	m.Bytes.WithLabelValues(partition, "value").Add(float64(len(value)))
}

// ObserveError records a failed scan of partition.
func (m *Metrics) ObserveError(partition string) {
	if m == nil {
		return
	}
	m.PartitionErrors.WithLabelValues(partition).Inc()
}

// ObserveScan records how long a scan of partition took.
func (m *Metrics) ObserveScan(partition string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScanDuration.WithLabelValues(partition).Observe(d.Seconds())
}

// HandleAcquired increments the open handle gauge.
func (m *Metrics) HandleAcquired() {
	if m == nil {
		return
	}
	m.OpenHandles.Inc()
}

// HandleReleased decrements the open handle gauge.
func (m *Metrics) HandleReleased() {
	if m == nil {
		return
	}
	m.OpenHandles.Dec()
}
