package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dispatch/internal/pkg/config"
)

// WorkerMetrics embeds the worker_config_* metrics and adds the digest job
// metrics:
//   - worker_digest_runs_total{status}
//   - worker_digest_duration_seconds
//   - worker_digest_recipients_total
//   - worker_digest_last_success_timestamp
//
// Every metric is registered with the default registry through promauto, so
// NewWorkerMetrics must be called once per process.
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal          *prometheus.CounterVec
	JobDurationSeconds    prometheus.Histogram
	DigestRecipientsTotal prometheus.Counter
	LastSuccessTimestamp  prometheus.Gauge
}

func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_digest_runs_total",
			Help: "Total number of digest runs by status (success/failure)",
		}, []string{"status"}),

		JobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_digest_duration_seconds",
			Help:    "Duration of digest runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 30, 60, 300},
		}),

		DigestRecipientsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_digest_recipients_total",
			Help: "Total number of editor addresses a digest was mailed to",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_digest_last_success_timestamp",
			Help: "Unix timestamp of the last successful digest run",
		}),
	}
}

// RecordJobRun counts one run; status is "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

func (m *WorkerMetrics) RecordRecipients(count int) {
	m.DigestRecipientsTotal.Add(float64(count))
}

func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
