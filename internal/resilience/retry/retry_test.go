package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

// fastConfig returns the production policy with an injected no-op sleeper
// that records requested delays instead of waiting.
func fastConfig(delays *[]time.Duration) Config {
	cfg := FixedBackoffConfig()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return cfg
}

func TestDo_Success(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig(&delays)

	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if len(delays) != 0 {
		t.Errorf("expected no sleeps, got %v", delays)
	}
}

func TestDo_BackoffSequence(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig(&delays)

	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		return &HTTPError{StatusCode: 503, Message: "Service Unavailable"}
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", attempts)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %d (%v)", len(want), len(delays), delays)
	}
	for i, d := range want {
		if delays[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, delays[i])
		}
	}
}

func TestDo_SuccessAfterRetry(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig(&delays)

	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: 500, Message: "Server Error"}
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(delays) != 2 {
		t.Errorf("expected 2 sleeps, got %v", delays)
	}
}

func TestDo_MaxAttemptsExceeded(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig(&delays)

	testErr := &HTTPError{StatusCode: 502, Message: "Bad Gateway"}
	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		return testErr
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", attempts)
	}
	if !errors.Is(err, testErr) {
		t.Error("expected wrapped error to contain original error")
	}
}

func TestDo_NonRetryableError(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig(&delays)

	testErr := &HTTPError{StatusCode: 404, Message: "Not Found"}
	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		return testErr
	})

	if !errors.Is(err, testErr) {
		t.Errorf("expected original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt (non-retryable), got %d", attempts)
	}
	if len(delays) != 0 {
		t.Errorf("expected no sleeps, got %v", delays)
	}
}

func TestDo_DelayCappedAtMax(t *testing.T) {
	var delays []time.Duration
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: 20 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		Sleep: func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}

	err := Do(context.Background(), cfg, func() error {
		return &HTTPError{StatusCode: 429, Message: "Too Many Requests"}
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	want := []time.Duration{20 * time.Second, 40 * time.Second, 60 * time.Second, 60 * time.Second}
	for i, d := range want {
		if delays[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, delays[i])
		}
	}
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	cfg := FixedBackoffConfig()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		return &HTTPError{StatusCode: 500, Message: "Server Error"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"http 429", &HTTPError{StatusCode: 429}, true},
		{"http 500", &HTTPError{StatusCode: 500}, true},
		{"http 502", &HTTPError{StatusCode: 502}, true},
		{"http 503", &HTTPError{StatusCode: 503}, true},
		{"http 504", &HTTPError{StatusCode: 504}, true},
		{"http 400", &HTTPError{StatusCode: 400}, false},
		{"http 401", &HTTPError{StatusCode: 401}, false},
		{"http 404", &HTTPError{StatusCode: 404}, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
