package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID attaches the dispatch request ID used in notifier logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request ID set by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RateLimitError is a 429 from a remote API.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError is a non-retryable rejection: a 4xx response or a permanent
// SMTP failure.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError is a retryable remote failure.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// classifyResponse maps a non-success HTTP response onto the typed errors.
func classifyResponse(service string, resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    service + " rate limit exceeded",
			RetryAfter: retryAfter(resp),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error: %s", service, truncateRunes(string(body), 200, "...")),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error: %s", service, truncateRunes(string(body), 200, "...")),
		}
	}
	return &ClientError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("%s API unexpected status %d", service, resp.StatusCode),
	}
}

// retryAfter reads the Retry-After header in seconds, defaulting to 5s.
func retryAfter(resp *http.Response) time.Duration {
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}

func isRetryableError(err error) bool {
	var (
		serverErr *ServerError
		clientErr *ClientError
		rateErr   *RateLimitError
	)
	switch {
	case errors.As(err, &serverErr):
		return true
	case errors.As(err, &clientErr), errors.As(err, &rateErr):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	// network errors
	return true
}

// retryPolicy bounds the attempts of a single announcement.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
}

// withRetry runs send until it succeeds or the policy gives up. Rate limits
// wait for the server's hint; other retryable errors back off linearly.
func withRetry(ctx context.Context, service string, articleID int64, p retryPolicy, send func(context.Context) error) error {
	requestID := RequestIDFrom(ctx)

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := send(ctx)
		if err == nil {
			slog.Info(service+" notification sent",
				slog.String("request_id", requestID),
				slog.Int64("article_id", articleID),
				slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		var wait time.Duration
		var rateErr *RateLimitError
		switch {
		case errors.As(err, &rateErr):
			wait = rateErr.RetryAfter
			slog.Warn(service+" rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.Int64("article_id", articleID),
				slog.Duration("retry_after", wait),
				slog.Int("attempt", attempt))
		case !isRetryableError(err):
			slog.Error(service+" notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.Int64("article_id", articleID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		default:
			wait = p.baseDelay * time.Duration(attempt)
			slog.Warn(service+" request failed, retrying",
				slog.String("request_id", requestID),
				slog.Int64("article_id", articleID),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", wait))
		}
		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("context canceled during backoff: %w", ctx.Err())
		}
	}

	slog.Error(service+" notification failed after all retries",
		slog.String("request_id", requestID),
		slog.Int64("article_id", articleID),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", p.maxAttempts))
	return fmt.Errorf("%s notification failed after %d attempts: %w", service, p.maxAttempts, lastErr)
}

// truncateRunes cuts text to at most max runes including suffix.
func truncateRunes(text string, max int, suffix string) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	keep := max - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(text)[:keep]) + suffix
}
