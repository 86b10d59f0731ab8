package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker state per channel is exported as circuit_breaker_state{name}.
var (
	notificationDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatched_total",
		Help: "Announcements handed to a channel",
	}, []string{"channel"})

	notificationSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sent_total",
		Help: "Announcement deliveries by channel and status (success or failure)",
	}, []string{"channel", "status"})

	notificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_duration_seconds",
		Help:    "Time spent delivering one announcement",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
	}, []string{"channel"})

	notificationDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dropped_total",
		Help: "Announcements never attempted, by reason (pool_full, circuit_open, shutdown)",
	}, []string{"channel", "reason"})

	notificationsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notification_in_flight",
		Help: "Deliveries currently running",
	})

	channelsEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notification_channels_enabled",
		Help: "Enabled notification channels",
	})
)

func recordDispatch(channel string) { notificationDispatchedTotal.WithLabelValues(channel).Inc() }

func recordResult(channel string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	notificationSentTotal.WithLabelValues(channel, status).Inc()
	notificationDuration.WithLabelValues(channel).Observe(d.Seconds())
}

func recordDropped(channel, reason string) {
	notificationDroppedTotal.WithLabelValues(channel, reason).Inc()
}
