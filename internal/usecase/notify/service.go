package notify

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/requestid"
	"dispatch/internal/infra/notifier"
	"dispatch/internal/observability/tracing"
	"dispatch/internal/resilience/circuitbreaker"
)

const (
	workerPoolTimeout   = 5 * time.Second
	notificationTimeout = 30 * time.Second
)

// Service dispatches announcements to every enabled channel.
type Service interface {
	// NotifyApproved returns immediately. Deliveries run in background
	// goroutines and their failures are logged, never returned.
	NotifyApproved(ctx context.Context, a *entity.Announcement) error

	// GetChannelHealth reports the circuit breaker state of each channel.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown stops accepting announcements and waits for in-flight
	// deliveries. When ctx ends first, the remaining deliveries are canceled.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus is the health of one channel.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

type service struct {
	channels       []Channel
	breakers       map[string]*circuitbreaker.CircuitBreaker
	workerPool     chan struct{}
	mu             sync.Mutex // guards closing and wg.Add
	closing        bool
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService builds a dispatcher with at most maxConcurrent deliveries in
// flight. Each channel gets its own circuit breaker.
func NewService(channels []Channel, maxConcurrent int) Service {
	return newService(channels, maxConcurrent, circuitbreaker.ChannelConfig)
}

func newService(channels []Channel, maxConcurrent int, breakerConfig func(string) circuitbreaker.Config) *service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	s := &service{
		channels:       channels,
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	enabled := 0
	for _, ch := range channels {
		s.breakers[ch.Name()] = circuitbreaker.New(breakerConfig(ch.Name()))
		if ch.IsEnabled() {
			enabled++
		}
	}
	channelsEnabled.Set(float64(enabled))
	return s
}

func (s *service) NotifyApproved(ctx context.Context, a *entity.Announcement) error {
	if a == nil || a.Article == nil {
		slog.Warn("Invalid announcement", slog.Bool("nil_announcement", a == nil))
		return nil
	}
	requestID := requestid.FromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var enabled []Channel
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabled = append(enabled, ch)
		}
	}
	if len(enabled) == 0 {
		slog.Debug("No notification channels enabled",
			slog.String("request_id", requestID),
			slog.Int64("article_id", a.Article.ID))
		return nil
	}

	slog.Info("Dispatching approval announcement",
		slog.String("request_id", requestID),
		slog.Int64("article_id", a.Article.ID),
		slog.Int("recipients", len(a.Recipients)),
		slog.Int("enabled_channels", len(enabled)))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range enabled {
		if s.closing {
			recordDropped(ch.Name(), "shutdown")
			continue
		}
		s.wg.Add(1)
		go s.notifyChannel(requestID, ch, a)
	}
	return nil
}

func (s *service) notifyChannel(requestID string, channel Channel, a *entity.Announcement) {
	defer s.wg.Done()

	notificationsInFlight.Inc()
	defer notificationsInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in notification channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("Notification dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		recordDropped(channel.Name(), "pool_full")
		return
	case <-s.shutdownCtx.Done():
		recordDropped(channel.Name(), "shutdown")
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()
	ctx = notifier.WithRequestID(ctx, requestID)

	ctx, span := tracing.GetTracer().Start(ctx, "notify."+channel.Name())
	span.SetAttributes(
		attribute.Int64("article.id", a.Article.ID),
		attribute.String("notify.channel", channel.Name()),
	)
	defer span.End()

	start := time.Now()
	recordDispatch(channel.Name())

	_, err := s.breakers[channel.Name()].Execute(func() (any, error) {
		return nil, channel.Send(ctx, a)
	})
	duration := time.Since(start)

	if circuitbreaker.IsRejected(err) {
		slog.Warn("Channel temporarily disabled due to circuit breaker",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Int64("article_id", a.Article.ID))
		recordDropped(channel.Name(), "circuit_open")
		span.SetStatus(codes.Error, "circuit open")
		return
	}

	recordResult(channel.Name(), err, duration)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		slog.Warn("Channel notification failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Int64("article_id", a.Article.ID),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}
	slog.Info("Channel notification sent",
		slog.String("request_id", requestID),
		slog.String("channel", channel.Name()),
		slog.Int64("article_id", a.Article.ID),
		slog.String("title", a.Article.Title),
		slog.Duration("send_duration", duration))
}

func (s *service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: s.breakers[ch.Name()].IsOpen(),
		})
	}
	return statuses
}

func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	defer s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Notification service shutdown timeout")
		return errors.Join(errors.New("notification shutdown"), ctx.Err())
	}
}
