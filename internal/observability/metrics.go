package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Consumer metrics
	SamplesConsumed    *prometheus.CounterVec
	OffsetCommits      *prometheus.CounterVec
	Rebalances         *prometheus.CounterVec
	CommitLatency      *prometheus.HistogramVec
	PartitionsAssigned *prometheus.GaugeVec
	DLQMessages        *prometheus.CounterVec

	// Buffer metrics
	SamplesBuffered  *prometheus.CounterVec
	BufferSize       *prometheus.GaugeVec
	BufferEvictions  *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec

	// Snapshot metrics
	SnapshotsWritten     *prometheus.CounterVec
	SnapshotSize         *prometheus.HistogramVec
	StorageWriteDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Consumer metrics
		SamplesConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bufstore_samples_consumed_total",
				Help: "Total number of sample messages consumed from Kafka",
			},
			[]string{"topic", "partition"},
		),
		OffsetCommits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bufstore_offset_commits_total",
				Help: "Total number of offset commits",
			},
			[]string{"topic", "partition", "status"},
		),
		Rebalances: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bufstore_rebalances_total",
				Help: "Total number of consumer group rebalances",
			},
			[]string{"group"},
		),
		CommitLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bufstore_commit_latency_seconds",
				Help:    "Latency of offset commit operations",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"topic", "partition"},
		),
		PartitionsAssigned: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bufstore_partitions_assigned",
				Help: "Number of partitions currently assigned to this consumer",
			},
			[]string{"topic"},
		),
		DLQMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bufstore_dlq_messages_total",
				Help: "Total number of messages published to the dead letter queue",
			},
			[]string{"topic"},
		),

		// Buffer metrics
		SamplesBuffered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bufstore_samples_buffered_total",
				Help: "Total number of samples added to buffers",
			},
			[]string{"label"},
		),
		BufferSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bufstore_buffer_size",
				Help: "Current number of elements held per buffer",
			},
			[]string{"label"},
		),
		BufferEvictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bufstore_buffer_evictions_total",
				Help: "Total number of oldest-element evictions per buffer",
			},
			[]string{"label"},
		),
		ValidationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bufstore_validation_errors_total",
				Help: "Total number of samples rejected by validation",
			},
			[]string{"label", "reason"},
		),

		// Snapshot metrics
		SnapshotsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bufstore_snapshots_written_total",
				Help: "Total number of buffer snapshots written to storage",
			},
			[]string{"label", "format", "status"},
		),
		SnapshotSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bufstore_snapshot_size_bytes",
				Help:    "Size of encoded snapshot files",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to 16MB
			},
			[]string{"label", "format"},
		),
		StorageWriteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bufstore_storage_write_duration_seconds",
				Help:    "Duration of complete storage write operations including encoding",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
	}
}

// IncSamplesConsumed increments the consumed samples counter.
func (m *Metrics) IncSamplesConsumed(topic string, partition int32) {
	m.SamplesConsumed.WithLabelValues(topic, fmt.Sprintf("%d", partition)).Inc()
}

// IncOffsetCommits increments the offset commits counter.
func (m *Metrics) IncOffsetCommits(topic string, partition int32, status string) {
	m.OffsetCommits.WithLabelValues(topic, fmt.Sprintf("%d", partition), status).Inc()
}

// IncRebalances increments the rebalances counter.
func (m *Metrics) IncRebalances(groupID string) {
	m.Rebalances.WithLabelValues(groupID).Inc()
}

// ObserveCommitLatency observes commit latency.
func (m *Metrics) ObserveCommitLatency(topic string, partition int32, duration float64) {
	m.CommitLatency.WithLabelValues(topic, fmt.Sprintf("%d", partition)).Observe(duration)
}

// SetPartitionsAssigned sets the partitions assigned gauge.
func (m *Metrics) SetPartitionsAssigned(topic string, count float64) {
	m.PartitionsAssigned.WithLabelValues(topic).Set(count)
}

// IncDLQMessages increments the DLQ messages counter.
func (m *Metrics) IncDLQMessages(topic string) {
	m.DLQMessages.WithLabelValues(topic).Inc()
}

// IncSamplesBuffered increments the buffered samples counter.
func (m *Metrics) IncSamplesBuffered(label string) {
	m.SamplesBuffered.WithLabelValues(label).Inc()
}

// SetBufferSize sets the buffer size gauge.
func (m *Metrics) SetBufferSize(label string, count float64) {
	m.BufferSize.WithLabelValues(label).Set(count)
}

// IncBufferEvictions increments the buffer evictions counter.
func (m *Metrics) IncBufferEvictions(label string) {
	m.BufferEvictions.WithLabelValues(label).Inc()
}

// IncValidationErrors increments the validation errors counter.
func (m *Metrics) IncValidationErrors(label, reason string) {
	m.ValidationErrors.WithLabelValues(label, reason).Inc()
}

// IncSnapshotsWritten increments the snapshots written counter.
func (m *Metrics) IncSnapshotsWritten(label, format, status string) {
	m.SnapshotsWritten.WithLabelValues(label, format, status).Inc()
}

// ObserveSnapshotSize observes an encoded snapshot size.
func (m *Metrics) ObserveSnapshotSize(label, format string, size float64) {
	m.SnapshotSize.WithLabelValues(label, format).Observe(size)
}

// ObserveStorageWriteDuration observes storage write duration.
func (m *Metrics) ObserveStorageWriteDuration(backend string, duration float64) {
	m.StorageWriteDuration.WithLabelValues(backend).Observe(duration)
}
