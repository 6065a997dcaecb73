package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient failure")

func quickConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetrier_SucceedsFirstAttempt(t *testing.T) {
	r := New(quickConfig(3))

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetrier_RetriesUntilSuccess(t *testing.T) {
	r := New(quickConfig(5))

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetrier_ExhaustsBudget(t *testing.T) {
	r := New(quickConfig(2))

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errTransient
	})
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Errorf("error = %v, want %v", err, ErrMaxRetriesExceeded)
	}
	// The last underlying error remains inspectable.
	if !errors.Is(err, errTransient) {
		t.Errorf("error = %v, should wrap %v", err, errTransient)
	}
	// Initial attempt plus two retries.
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetrier_PermanentStopsImmediately(t *testing.T) {
	r := New(quickConfig(5))

	errFatal := errors.New("bad input")
	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(errFatal)
	})
	if !errors.Is(err, errFatal) {
		t.Errorf("error = %v, want %v", err, errFatal)
	}
	if errors.Is(err, ErrMaxRetriesExceeded) {
		t.Error("permanent error should not be reported as exhaustion")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetrier_ContextCancellation(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		Multiplier:      1.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func(ctx context.Context) error {
		calls++
		return errTransient
	})
	if !errors.Is(err, ErrContextCanceled) {
		t.Errorf("error = %v, want %v", err, ErrContextCanceled)
	}
	if calls == 0 {
		t.Error("operation never ran")
	}
}

func TestRetrier_PermanentNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}

func TestRetrier_IntervalCapped(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: time.Millisecond,
		MaxInterval:     4 * time.Millisecond,
		Multiplier:      2.0,
	})

	for attempt := 0; attempt < 10; attempt++ {
		if got := r.intervalFor(attempt); got > 4*time.Millisecond {
			t.Errorf("intervalFor(%d) = %v, exceeds cap", attempt, got)
		}
	}
}
