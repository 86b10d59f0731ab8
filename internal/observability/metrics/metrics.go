// Package metrics holds the editorial workflow metrics and the database pool
// collector. HTTP traffic is measured by the HTTP middleware.
package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ArticlesTotal is refreshed by every digest run.
	ArticlesTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "articles_total",
		Help: "Stored articles by state (approved or pending)",
	}, []string{"state"})

	ArticlesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "articles_created_total",
		Help: "Articles created, by source kind",
	}, []string{"source_kind"})

	ArticleReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "article_reviews_total",
		Help: "Editor review attempts by action and result",
	}, []string{"action", "result"})

	ApprovalRecipients = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "approval_recipients",
		Help:    "Subscribers notified per approval",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	SubscriptionChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_changes_total",
		Help: "Subscription changes by target kind and action",
	}, []string{"kind", "action"})

	UserRegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "user_registrations_total",
		Help: "Registered users by role",
	}, []string{"role"})
)

func RecordArticleCreated(sourceKind string) { ArticlesCreatedTotal.WithLabelValues(sourceKind).Inc() }

// RecordReview counts an editor decision. result is "ok", "forbidden",
// "already_approved", "not_found" or "error".
func RecordReview(action, result string) { ArticleReviewsTotal.WithLabelValues(action, result).Inc() }

func RecordApprovalRecipients(n int) { ApprovalRecipients.Observe(float64(n)) }

func RecordSubscriptionChange(kind, action string) {
	SubscriptionChangesTotal.WithLabelValues(kind, action).Inc()
}

func RecordRegistration(role string) { UserRegistrationsTotal.WithLabelValues(role).Inc() }

func UpdateArticlesTotal(approved, pending int64) {
	ArticlesTotal.WithLabelValues("approved").Set(float64(approved))
	ArticlesTotal.WithLabelValues("pending").Set(float64(pending))
}

// RegisterDBStats exports the pool statistics of db as go_sql_* series
// labelled db_name=name.
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB, name string) error {
	return reg.Register(collectors.NewDBStatsCollector(db, name))
}
