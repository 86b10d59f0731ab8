package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"dispatch/internal/handler/http/respond"
)

var (
	rateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_decisions_total",
			Help: "Rate limiter decisions by limiter and outcome",
		},
		[]string{"limiter", "outcome"}, // outcome: allowed | denied
	)

	rateLimitActiveKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_rate_limit_active_keys",
			Help: "Client keys currently tracked by each limiter",
		},
		[]string{"limiter"},
	)
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket. It guards credential endpoints
// against guessing.
type RateLimiter struct {
	name    string
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	ip      IPExtractor
	now     func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter allows burst requests at once per client, refilling one
// token every interval.
func NewRateLimiter(name string, interval time.Duration, burst int, ip IPExtractor) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		name:     name,
		limit:    rate.Every(interval),
		burst:    burst,
		idleTTL:  interval * time.Duration(burst) * 2,
		ip:       ip,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Allow takes a token for key. When denied it reports how long until the
// next token is available.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
		rateLimitActiveKeys.WithLabelValues(rl.name).Set(float64(len(rl.visitors)))
	}
	v.lastSeen = now
	rl.mu.Unlock()

	res := v.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		rateLimitDecisions.WithLabelValues(rl.name, "denied").Inc()
		return false, delay
	}
	rateLimitDecisions.WithLabelValues(rl.name, "allowed").Inc()
	return true, 0
}

// Middleware throttles by client IP and answers 429 with Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.Allow(rl.ip.ClientIP(r))
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			respond.SafeErrorV2(w, http.StatusTooManyRequests,
				respond.NewAppError(http.StatusTooManyRequests, "rate limit exceeded",
					fmt.Errorf("%s limiter: retry in %ds", rl.name, secs)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sweep drops clients idle for longer than it takes their bucket to refill.
func (rl *RateLimiter) Sweep() int {
	cutoff := rl.now().Add(-rl.idleTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for k, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, k)
			removed++
		}
	}
	rateLimitActiveKeys.WithLabelValues(rl.name).Set(float64(len(rl.visitors)))
	return removed
}

// Len reports how many clients are tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// RunSweeper calls Sweep every interval until ctx ends.
func (rl *RateLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}
