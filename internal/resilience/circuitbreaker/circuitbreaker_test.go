package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tripAfter(name string, n uint32) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 0.5,
		MinRequests:      n,
	}
}

var errSMTP = errors.New("421 service not available")

func TestCircuitBreaker_PassesResults(t *testing.T) {
	b := New(DefaultConfig("test-pass"))
	got, err := Call(b, func() (string, error) { return "sent", nil })
	require.NoError(t, err)
	assert.Equal(t, "sent", got)

	_, err = Call(b, func() (int, error) { return 0, errSMTP })
	assert.ErrorIs(t, err, errSMTP)
	assert.False(t, IsRejected(err))
	assert.Equal(t, "test-pass", b.Name())
}

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	b := New(tripAfter("test-trip", 2))
	fail := func() (any, error) { return nil, errSMTP }

	_, _ = b.Execute(fail)
	assert.False(t, b.IsOpen(), "one failure is below MinRequests")
	_, _ = b.Execute(fail)
	require.True(t, b.IsOpen())
	assert.Equal(t, 2.0, testutil.ToFloat64(breakerState.WithLabelValues("test-trip")))

	_, err := b.Execute(func() (any, error) { t.Fatal("called while open"); return nil, nil })
	assert.True(t, IsRejected(err))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, b.State())
	_, err = b.Execute(func() (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues("test-trip")))
}

func TestCircuitBreaker_CancellationIsNotAFailure(t *testing.T) {
	b := New(tripAfter("test-cancel", 2))
	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (any, error) {
			return nil, fmt.Errorf("send: %w", context.Canceled)
		})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.False(t, b.IsOpen())
}

func TestChannelConfig(t *testing.T) {
	email := ChannelConfig("email")
	assert.Equal(t, 2*time.Minute, email.Timeout)
	assert.Equal(t, uint32(2), email.MaxRequests)

	twitter := ChannelConfig("twitter")
	assert.Equal(t, 5*time.Minute, twitter.Timeout)
	assert.Equal(t, uint32(3), twitter.MinRequests)

	slack := ChannelConfig("slack")
	assert.Equal(t, DefaultConfig("slack"), slack)
}

func TestIsRejected(t *testing.T) {
	assert.True(t, IsRejected(gobreaker.ErrOpenState))
	assert.True(t, IsRejected(fmt.Errorf("notify: %w", gobreaker.ErrTooManyRequests)))
	assert.False(t, IsRejected(errSMTP))
	assert.False(t, IsRejected(nil))
}
