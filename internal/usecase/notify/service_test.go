package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/requestid"
	"dispatch/internal/infra/notifier"
	"dispatch/internal/resilience/circuitbreaker"
)

type mockChannel struct {
	name    string
	enabled bool
	err     error
	block   bool
	panics  bool

	mu        sync.Mutex
	calls     int
	requestID string
}

func (m *mockChannel) Name() string    { return m.name }
func (m *mockChannel) IsEnabled() bool { return m.enabled }

func (m *mockChannel) Send(ctx context.Context, a *entity.Announcement) error {
	m.mu.Lock()
	m.calls++
	m.requestID = notifier.RequestIDFrom(ctx)
	m.mu.Unlock()
	if m.panics {
		panic("boom")
	}
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

func (m *mockChannel) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func announcement() *entity.Announcement {
	author := int64(3)
	return &entity.Announcement{
		Article:    &entity.Article{ID: 1, Title: "Budget", Content: "c", AuthorID: &author, Approved: true},
		SourceKind: entity.SourceJournalist,
		SourceName: "Jane",
		Recipients: []*entity.User{{ID: 10, Email: "r@example.com"}},
	}
}

func fastTripConfig(name string) circuitbreaker.Config {
	return circuitbreaker.Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
}

/* ───────────────────────────── 1. dispatch ───────────────────────────── */

func TestNotifyApproved_NoChannelsEnabled(t *testing.T) {
	ch := &mockChannel{name: "off", enabled: false}
	svc := newService([]Channel{ch}, 4, fastTripConfig)

	require.NoError(t, svc.NotifyApproved(context.Background(), announcement()))
	svc.wg.Wait()
	assert.Zero(t, ch.sendCount())
}

func TestNotifyApproved_FansOutToEnabledChannels(t *testing.T) {
	a := &mockChannel{name: "fan-a", enabled: true}
	b := &mockChannel{name: "fan-b", enabled: true}
	off := &mockChannel{name: "fan-off", enabled: false}
	svc := newService([]Channel{a, b, off}, 4, fastTripConfig)

	ctx := requestid.WithRequestID(context.Background(), "req-42")
	require.NoError(t, svc.NotifyApproved(ctx, announcement()))
	svc.wg.Wait()

	assert.Equal(t, 1, a.sendCount())
	assert.Equal(t, 1, b.sendCount())
	assert.Zero(t, off.sendCount())
	assert.Equal(t, "req-42", a.requestID)
	assert.Equal(t, float64(1), testutil.ToFloat64(notificationSentTotal.WithLabelValues("fan-a", "success")))
}

func TestNotifyApproved_FailureIsNotReturned(t *testing.T) {
	ch := &mockChannel{name: "fail-once", enabled: true, err: errors.New("smtp down")}
	svc := newService([]Channel{ch}, 4, fastTripConfig)

	assert.NoError(t, svc.NotifyApproved(context.Background(), announcement()))
	svc.wg.Wait()
	assert.Equal(t, 1, ch.sendCount())
	assert.Equal(t, float64(1), testutil.ToFloat64(notificationSentTotal.WithLabelValues("fail-once", "failure")))
}

func TestNotifyApproved_InvalidInput(t *testing.T) {
	ch := &mockChannel{name: "invalid", enabled: true}
	svc := newService([]Channel{ch}, 4, fastTripConfig)

	assert.NoError(t, svc.NotifyApproved(context.Background(), nil))
	assert.NoError(t, svc.NotifyApproved(context.Background(), &entity.Announcement{}))
	svc.wg.Wait()
	assert.Zero(t, ch.sendCount())
}

func TestNotifyApproved_PanicIsRecovered(t *testing.T) {
	ch := &mockChannel{name: "panicky", enabled: true, panics: true}
	svc := newService([]Channel{ch}, 4, fastTripConfig)

	assert.NoError(t, svc.NotifyApproved(context.Background(), announcement()))
	svc.wg.Wait()
	assert.Equal(t, 1, ch.sendCount())
}

/* ───────────────────────────── 2. circuit breaker ───────────────────────────── */

func TestNotifyApproved_CircuitBreakerOpens(t *testing.T) {
	ch := &mockChannel{name: "tripping", enabled: true, err: errors.New("503")}
	svc := newService([]Channel{ch}, 4, fastTripConfig)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.NotifyApproved(context.Background(), announcement()))
		svc.wg.Wait()
	}
	require.Equal(t, 2, ch.sendCount())

	health := svc.GetChannelHealth()
	require.Len(t, health, 1)
	assert.True(t, health[0].CircuitBreakerOpen)

	require.NoError(t, svc.NotifyApproved(context.Background(), announcement()))
	svc.wg.Wait()
	assert.Equal(t, 2, ch.sendCount(), "open breaker must short-circuit")
	assert.Equal(t, float64(1), testutil.ToFloat64(notificationDroppedTotal.WithLabelValues("tripping", "circuit_open")))
}

/* ───────────────────────────── 3. shutdown ───────────────────────────── */

func TestShutdown_WaitsAndRejectsNewWork(t *testing.T) {
	ch := &mockChannel{name: "drain", enabled: true}
	svc := newService([]Channel{ch}, 4, fastTripConfig)

	require.NoError(t, svc.NotifyApproved(context.Background(), announcement()))
	require.NoError(t, svc.Shutdown(context.Background()))
	assert.Equal(t, 1, ch.sendCount())

	require.NoError(t, svc.NotifyApproved(context.Background(), announcement()))
	svc.wg.Wait()
	assert.Equal(t, 1, ch.sendCount())
	assert.Equal(t, float64(1), testutil.ToFloat64(notificationDroppedTotal.WithLabelValues("drain", "shutdown")))
}

func TestShutdown_TimeoutCancelsInFlight(t *testing.T) {
	ch := &mockChannel{name: "stuck", enabled: true, block: true}
	svc := newService([]Channel{ch}, 4, fastTripConfig)

	require.NoError(t, svc.NotifyApproved(context.Background(), announcement()))
	require.Eventually(t, func() bool { return ch.sendCount() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := svc.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	done := make(chan struct{})
	go func() { svc.wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("in-flight delivery was not canceled")
	}
}

/* ───────────────────────────── 4. channels ───────────────────────────── */

func TestChannelConstructors(t *testing.T) {
	tw := NewTwitterChannel(notifier.TwitterConfig{
		APIKey: "your-twitter-api-key", APISecret: "s", AccessToken: "t", AccessTokenSecret: "ts",
	})
	assert.Equal(t, "twitter", tw.Name())
	assert.False(t, tw.IsEnabled())
	assert.ErrorIs(t, tw.Send(context.Background(), announcement()), ErrChannelDisabled)

	sl := NewSlackChannel(notifier.SlackConfig{Enabled: true})
	assert.False(t, sl.IsEnabled(), "slack without webhook URL stays disabled")

	em := NewEmailChannel(notifier.EmailConfig{Enabled: true, Host: "localhost", Port: 25})
	assert.Equal(t, "email", em.Name())
	assert.True(t, em.IsEnabled())
	assert.ErrorIs(t, em.Send(context.Background(), &entity.Announcement{}), ErrInvalidAnnouncement)
}

func TestNotifierChannel_DelegatesToNotifier(t *testing.T) {
	ch := NewNotifierChannel("noop", true, notifier.NewNoOpNotifier())
	assert.NoError(t, ch.Send(context.Background(), announcement()))
}
