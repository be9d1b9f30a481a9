package eventsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		Retryable:    IsTransient,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), zap.NewNop(), "op", func() error {
		calls++
		if calls < 3 {
			return &StatusError{Code: 503, Body: "overloaded"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	wantErr := &StatusError{Code: 400, Body: "bad query"}
	err := fastPolicy().Do(context.Background(), zap.NewNop(), "op", func() error {
		calls++
		return wantErr
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, error(wantErr))
}

func TestDo_ExhaustedRetriesWrapLastError(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), zap.NewNop(), "fetch swap page", func() error {
		calls++
		return &StatusError{Code: 502, Body: "bad gateway"}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDo_HonorsRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	err := fastPolicy().Do(context.Background(), zap.NewNop(), "op", func() error {
		calls++
		if calls == 1 {
			return &RetryAfterError{Delay: 50 * time.Millisecond}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDo_ContextCancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastPolicy().Do(ctx, zap.NewNop(), "op", func() error {
		calls++
		cancel()
		return &StatusError{Code: 500, Body: "boom"}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &StatusError{Code: 500}, true},
		{"bad gateway", &StatusError{Code: 502}, true},
		{"client error", &StatusError{Code: 404}, false},
		{"rate limit", &RetryAfterError{Delay: time.Second}, true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"transient signature", errors.New("DB::Exception: too many simultaneous queries"), true},
		{"plain error", errors.New("syntax error in query"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
