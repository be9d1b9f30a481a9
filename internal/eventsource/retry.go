package eventsource

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default retry settings for analytics-store calls.
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 10 * time.Second
	DefaultMultiplier   = 2.0
)

// RetryPolicy executes operations with exponential backoff. Which errors
// are worth retrying is decided by the Retryable predicate, so every data
// access call shares one policy instead of growing its own loop.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Retryable classifies errors. Defaults to IsTransient.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns the policy used against the analytics store.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		Multiplier:   DefaultMultiplier,
		Retryable:    IsTransient,
	}
}

// RetryAfterError signals that the server asked for a specific pause before
// the next attempt (HTTP 429 with a Retry-After header).
type RetryAfterError struct {
	Delay time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.Delay)
}

// transientSignatures are backend error strings that indicate a momentary
// condition rather than a broken query.
var transientSignatures = []string{
	"too many simultaneous queries",
	"memory limit",
	"timeout exceeded",
	"connection reset",
	"bad gateway",
	"service unavailable",
}

// IsTransient reports whether an error is worth retrying: server overload,
// request timeouts and known transient backend signatures. Context
// cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var retryAfter *RetryAfterError
	if errors.As(err, &retryAfter) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// StatusError is a non-2xx HTTP response from the analytics store.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Do runs fn with retries. Non-retryable errors return immediately;
// exhausted attempts return the last error wrapped.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, operation string, fn func() error) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	delay := p.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := delay
		var retryAfter *RetryAfterError
		if errors.As(lastErr, &retryAfter) && retryAfter.Delay > 0 {
			// The server told us how long to hold off.
			wait = retryAfter.Delay
		}

		logger.Warn("transient failure, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.MaxAttempts),
			zap.Duration("retry_in", wait),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, p.MaxAttempts, lastErr)
}
