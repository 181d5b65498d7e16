package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilientExecutor wraps an executor with resilience patterns from
// fortify. The mock executor never fails, but the evaluation service is
// written against the Executor interface so a real interpreter or remote
// sandbox can be substituted; this wrapper is what makes that substitution
// safe.
type ResilientExecutor struct {
	executor       Executor
	circuitBreaker circuitbreaker.CircuitBreaker[string]
	retrier        retry.Retry[string]
	bulkhead       bulkhead.Bulkhead[string]
	rateLimit      ratelimit.RateLimiter
	logger         *slog.Logger
}

// ResilientConfig holds configuration for the resilient executor wrapper
type ResilientConfig struct {
	EnableCircuitBreaker bool
	EnableRetry          bool
	EnableBulkhead       bool
	EnableRateLimit      bool

	// MaxConcurrent for bulkhead (default: 4)
	MaxConcurrent int

	// RatePerSecond for rate limiting (default: 10)
	RatePerSecond int

	Logger *slog.Logger
}

// DefaultResilientConfig returns sensible defaults for a local runner
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		EnableCircuitBreaker: true,
		EnableRetry:          true,
		EnableBulkhead:       true,
		EnableRateLimit:      true,
		MaxConcurrent:        4,
		RatePerSecond:        10,
	}
}

// NewResilientExecutor wraps an executor with the configured patterns
func NewResilientExecutor(executor Executor, cfg ResilientConfig) *ResilientExecutor {
	re := &ResilientExecutor{
		executor: executor,
		logger:   cfg.Logger,
	}

	if cfg.EnableCircuitBreaker {
		re.circuitBreaker = circuitbreaker.New[string](circuitbreaker.Config{
			MaxRequests: 2,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				if re.logger != nil {
					re.logger.Warn("executor circuit breaker state change",
						"from", from.String(),
						"to", to.String())
				}
			},
		})
	}

	if cfg.EnableRetry {
		re.retrier = retry.New[string](retry.Config{
			MaxAttempts:   3,
			InitialDelay:  100 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable: func(err error) bool {
				// Context cancellation means the caller gave up.
				return err != nil && err != context.Canceled && err != context.DeadlineExceeded
			},
		})
	}

	if cfg.EnableBulkhead {
		maxConcurrent := cfg.MaxConcurrent
		if maxConcurrent <= 0 {
			maxConcurrent = 4
		}
		re.bulkhead = bulkhead.New[string](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
			MaxQueue:      maxConcurrent * 2,
			QueueTimeout:  10 * time.Second,
		})
	}

	if cfg.EnableRateLimit {
		rate := cfg.RatePerSecond
		if rate <= 0 {
			rate = 10
		}
		re.rateLimit = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 2,
			Interval: time.Second,
		})
	}

	return re
}

// Execute runs the wrapped executor inside the configured patterns
func (e *ResilientExecutor) Execute(ctx context.Context, language, code, input string) (string, error) {
	if e.rateLimit != nil {
		if !e.rateLimit.Allow(ctx, "runner") {
			return "", fmt.Errorf("runner rate limit exceeded")
		}
	}

	operation := func(ctx context.Context) (string, error) {
		return e.executor.Execute(ctx, language, code, input)
	}

	if e.bulkhead != nil {
		inner := operation
		operation = func(ctx context.Context) (string, error) {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	if e.circuitBreaker != nil && e.retrier != nil {
		return e.circuitBreaker.Execute(ctx, func(ctx context.Context) (string, error) {
			return e.retrier.Do(ctx, operation)
		})
	}
	if e.circuitBreaker != nil {
		return e.circuitBreaker.Execute(ctx, operation)
	}
	if e.retrier != nil {
		return e.retrier.Do(ctx, operation)
	}
	return operation(ctx)
}

// Close releases resources held by the wrapper
func (e *ResilientExecutor) Close() error {
	if e.rateLimit != nil {
		return e.rateLimit.Close()
	}
	return nil
}
