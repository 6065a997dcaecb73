package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Common errors
var (
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrContextCanceled    = errors.New("context canceled during retry")
)

// Config contains retry configuration
type Config struct {
	// MaxRetries is the maximum number of retry attempts (0 = initial attempt only)
	MaxRetries int
	// InitialInterval is the initial backoff interval
	InitialInterval time.Duration
	// MaxInterval caps the backoff interval
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry
	Multiplier float64
	// JitterFactor (0-1) randomizes the interval by ±factor
	JitterFactor float64
}

// DefaultConfig returns retry settings tuned for short in-process conflicts
// rather than network outages: quick retries, tight cap.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     200 * time.Millisecond,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError wraps an error that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks an error as permanent (not retryable)
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Retrier handles retry logic with exponential backoff
type Retrier struct {
	config *Config
}

// New creates a new Retrier with the given configuration
func New(config *Config) *Retrier {
	if config == nil {
		config = DefaultConfig()
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = 10 * time.Millisecond
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = 200 * time.Millisecond
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.JitterFactor < 0 {
		config.JitterFactor = 0
	}
	if config.JitterFactor > 1 {
		config.JitterFactor = 1
	}
	return &Retrier{config: config}
}

// Do executes the operation, retrying on failure until it succeeds, returns a
// permanent error, the retry budget runs out, or the context is done.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ErrContextCanceled
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var permErr *PermanentError
		if errors.As(err, &permErr) {
			return permErr.Err
		}

		lastErr = err

		if attempt == r.config.MaxRetries {
			break
		}

		interval := r.intervalFor(attempt)
		select {
		case <-ctx.Done():
			return ErrContextCanceled
		case <-time.After(interval):
		}
	}

	return errors.Join(ErrMaxRetriesExceeded, lastErr)
}

func (r *Retrier) intervalFor(attempt int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt))
	if interval > float64(r.config.MaxInterval) {
		interval = float64(r.config.MaxInterval)
	}
	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval = interval - jitter + rand.Float64()*2*jitter
	}
	return time.Duration(interval)
}
