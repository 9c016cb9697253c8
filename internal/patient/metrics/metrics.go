package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for patient registration and listing.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Write outcomes: remote, offline, rejected
	WriteOutcome *prometheus.CounterVec

	// Reads by the source that served them, and whether the remote failed first
	ReadSource *prometheus.CounterVec

	// Records waiting in the offline queue
	PendingRecords prometheus.Gauge

	// Remote call latency by operation and result
	RemoteLatency *prometheus.HistogramVec

	// Offline queue blobs that could not be decoded
	QueueCorrupt prometheus.Counter
}

// New registers the patient metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		WriteOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "healthreg_patient_writes_total",
			Help: "Patient registrations by outcome",
		}, []string{"outcome", "fallback"}),

		ReadSource: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "healthreg_patient_reads_total",
			Help: "Patient list reads by serving source",
		}, []string{"source", "degraded"}),

		PendingRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "healthreg_offline_pending_records",
			Help: "Records in the offline queue not yet confirmed as synced",
		}),

		RemoteLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthreg_remote_duration_seconds",
			Help:    "Duration of remote record service calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "result"}),

		QueueCorrupt: factory.NewCounter(prometheus.CounterOpts{
			Name: "healthreg_offline_queue_corrupt_total",
			Help: "Offline queue reads that found an undecodable blob",
		}),
	}
}

// IncrementWrite records a registration outcome. fallback is true when the
// remote was attempted and failed.
func (m *Metrics) IncrementWrite(outcome string, fallback bool) {
	if m != nil {
		m.WriteOutcome.WithLabelValues(outcome, boolLabel(fallback)).Inc()
	}
}

// IncrementRead records which source served a list.
func (m *Metrics) IncrementRead(source string, degraded bool) {
	if m != nil {
		m.ReadSource.WithLabelValues(source, boolLabel(degraded)).Inc()
	}
}

func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.PendingRecords.Set(float64(n))
	}
}

// ObserveRemote records a remote call duration.
func (m *Metrics) ObserveRemote(operation string, err error, d time.Duration) {
	if m != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.RemoteLatency.WithLabelValues(operation, result).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCorrupt() {
	if m != nil {
		m.QueueCorrupt.Inc()
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
