package metrics

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordReview(t *testing.T) {
	before := testutil.ToFloat64(ArticleReviewsTotal.WithLabelValues("approve", "ok"))
	RecordReview("approve", "ok")
	RecordReview("approve", "ok")
	assert.Equal(t, before+2, testutil.ToFloat64(ArticleReviewsTotal.WithLabelValues("approve", "ok")))
}

func TestUpdateArticlesTotal(t *testing.T) {
	UpdateArticlesTotal(12, 3)
	assert.Equal(t, 12.0, testutil.ToFloat64(ArticlesTotal.WithLabelValues("approved")))
	assert.Equal(t, 3.0, testutil.ToFloat64(ArticlesTotal.WithLabelValues("pending")))
}

func TestRecordSubscriptionChange(t *testing.T) {
	before := testutil.ToFloat64(SubscriptionChangesTotal.WithLabelValues("publisher", "subscribe"))
	RecordSubscriptionChange("publisher", "subscribe")
	assert.Equal(t, before+1, testutil.ToFloat64(SubscriptionChangesTotal.WithLabelValues("publisher", "subscribe")))
}

func TestCountersAndHistogram(t *testing.T) {
	RecordArticleCreated("journalist")
	RecordRegistration("reader")
	RecordApprovalRecipients(4)
	assert.Positive(t, testutil.ToFloat64(ArticlesCreatedTotal.WithLabelValues("journalist")))
	assert.Positive(t, testutil.ToFloat64(UserRegistrationsTotal.WithLabelValues("reader")))
	assert.Equal(t, 1, testutil.CollectAndCount(ApprovalRecipients))
}

func TestRegisterDBStats(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterDBStats(reg, db, "dispatch"))
	assert.Error(t, RegisterDBStats(reg, db, "dispatch"), "duplicate registration")

	n, err := testutil.GatherAndCount(reg, "go_sql_max_open_connections", "go_sql_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
