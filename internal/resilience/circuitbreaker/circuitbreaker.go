// Package circuitbreaker guards the database and the notification channels
// with sony/gobreaker, and exports each breaker's state as a gauge.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "circuit_breaker_state",
	Help: "Circuit breaker state by name (0 closed, 1 half-open, 2 open)",
}, []string{"name"})

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string
	// MaxRequests may pass while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts.
	Interval time.Duration
	// Timeout is the time spent open before probing again.
	Timeout time.Duration
	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests calls have been counted.
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ChannelConfig returns the breaker settings for a notification channel.
// Mail relays and the Twitter API stay open longer than chat webhooks.
func ChannelConfig(channel string) Config {
	cfg := DefaultConfig(channel)
	switch channel {
	case "email":
		cfg.MaxRequests = 2
		cfg.Interval = time.Minute
		cfg.Timeout = 2 * time.Minute
	case "twitter":
		cfg.MaxRequests = 1
		cfg.Interval = time.Minute
		cfg.Timeout = 5 * time.Minute
		cfg.FailureThreshold = 0.5
		cfg.MinRequests = 3
	}
	return cfg
}

// IsRejected reports whether err came from the breaker rather than the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

func New(cfg Config) *CircuitBreaker {
	breakerState.WithLabelValues(cfg.Name).Set(0)
	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureThreshold
		},
		// A caller giving up is not a failure of the guarded dependency.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})}
}

// Execute runs fn unless the breaker is open.
func (b *CircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

// Call runs fn through b and keeps its result type.
func Call[T any](b *CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

func (b *CircuitBreaker) Name() string { return b.cb.Name() }

func (b *CircuitBreaker) State() gobreaker.State { return b.cb.State() }

func (b *CircuitBreaker) IsOpen() bool { return b.cb.State() == gobreaker.StateOpen }
