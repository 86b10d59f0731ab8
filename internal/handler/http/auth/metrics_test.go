package auth

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordToken(t *testing.T) {
	tokenRequests.Reset()
	tokenDuration.Reset()
	start := time.Now()

	recordToken("editor", outcomeIssued, start)
	recordToken("editor", outcomeIssued, start)
	recordToken("unknown", "invalid_credentials", start)

	assert.Equal(t, 2.0, testutil.ToFloat64(tokenRequests.WithLabelValues("editor", outcomeIssued)))
	assert.Equal(t, 1.0, testutil.ToFloat64(tokenRequests.WithLabelValues("unknown", "invalid_credentials")))
	assert.Equal(t, 2, testutil.CollectAndCount(tokenDuration))
}

func TestRecordForbidden(t *testing.T) {
	forbidden.Reset()
	recordForbidden("reader", "POST")
	recordForbidden("journalist", "PUT")
	assert.Equal(t, 1.0, testutil.ToFloat64(forbidden.WithLabelValues("reader", "POST")))
	assert.Equal(t, 2, testutil.CollectAndCount(forbidden))
}

func TestRecordAuthz(t *testing.T) {
	recordAuthz(time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(authzDuration))
}
