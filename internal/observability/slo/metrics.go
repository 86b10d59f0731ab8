// Package slo tracks the service level indicators of the HTTP surface over a
// rolling window of recent requests and publishes them as gauges.
package slo

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets.
const (
	// AvailabilitySLO is the target share of non-5xx responses, in percent.
	AvailabilitySLO = 99.9
	LatencyP95SLO   = 0.200
	LatencyP99SLO   = 0.500
	ErrorRateSLO    = 0.001
)

var (
	SLOAvailability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_availability_ratio",
			Help: "Share of non-5xx responses in the rolling window (0-1), target: 0.999",
		},
	)

	SLOLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_latency_p95_seconds",
			Help: "p95 latency in the rolling window, target: 0.200",
		},
	)

	SLOLatencyP99 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_latency_p99_seconds",
			Help: "p99 latency in the rolling window, target: 0.500",
		},
	)

	SLOErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_error_rate_ratio",
			Help: "Share of 5xx responses in the rolling window (0-1), target: 0.001",
		},
	)
)

// DefaultWindow is the number of recent requests DefaultTracker keeps.
const DefaultWindow = 4096

// DefaultTracker is fed by the HTTP metrics middleware.
var DefaultTracker = NewTracker(DefaultWindow)

type sample struct {
	failed   bool
	duration time.Duration
}

// Tracker keeps the last N request outcomes in a ring buffer.
type Tracker struct {
	mu      sync.Mutex
	samples []sample
	next    int
	full    bool
}

// NewTracker returns a tracker over the last size requests.
func NewTracker(size int) *Tracker {
	if size < 1 {
		size = 1
	}
	return &Tracker{samples: make([]sample, size)}
}

// Observe records one response. Only 5xx statuses count against availability.
func (t *Tracker) Observe(status int, d time.Duration) {
	t.mu.Lock()
	t.samples[t.next] = sample{failed: status >= 500, duration: d}
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.full = true
	}
	t.mu.Unlock()
}

// Snapshot summarises the window.
type Snapshot struct {
	Requests     int
	Availability float64
	ErrorRate    float64
	P95          time.Duration
	P99          time.Duration
}

// Snapshot computes the indicators over the current window. An empty window
// reports full availability.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	n := t.next
	if t.full {
		n = len(t.samples)
	}
	durations := make([]time.Duration, n)
	failed := 0
	for i := 0; i < n; i++ {
		durations[i] = t.samples[i].duration
		if t.samples[i].failed {
			failed++
		}
	}
	t.mu.Unlock()

	if n == 0 {
		return Snapshot{Availability: 1}
	}
	slices.Sort(durations)
	errRate := float64(failed) / float64(n)
	return Snapshot{
		Requests:     n,
		Availability: 1 - errRate,
		ErrorRate:    errRate,
		P95:          percentile(durations, 0.95),
		P99:          percentile(durations, 0.99),
	}
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}

// Publish copies the current snapshot into the SLO gauges.
func (t *Tracker) Publish() Snapshot {
	s := t.Snapshot()
	SLOAvailability.Set(s.Availability)
	SLOErrorRate.Set(s.ErrorRate)
	SLOLatencyP95.Set(s.P95.Seconds())
	SLOLatencyP99.Set(s.P99.Seconds())
	return s
}

// Run publishes every interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Publish()
		}
	}
}
