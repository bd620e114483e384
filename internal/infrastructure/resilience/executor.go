package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Executor guards calls to the system's external collaborators, the
// document-intelligence service and the message broker. Every call runs
// under the retry policy; when the breaker is enabled, each named operation
// gets its own circuit breaker, so a dead analyze endpoint cannot open the
// publish path's circuit.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Execute runs fn for the named operation. classify decides whether a
// failure is retryable and whether it counts against the breaker; nil
// selects ExternalServiceClassifier, the profile of the extraction call.
func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classify ErrorClassifier,
) error {
	if operation == "" {
		operation = "external_call"
	}
	if classify == nil {
		classify = ExternalServiceClassifier
	}

	if !e.cfg.BreakerEnabled {
		return e.retry(ctx, operation, fn, classify)
	}
	_, err := e.breakerFor(operation, classify).Execute(func() (any, error) {
		return nil, e.retry(ctx, operation, fn, classify)
	})
	return err
}

func (e *Executor) retry(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classify ErrorClassifier,
) error {
	wait := e.cfg.RetryInitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= e.cfg.RetryMaxAttempts || !classify(err).Retryable {
			return err
		}

		slog.Warn("external_call_retry",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.cfg.RetryMaxAttempts,
			"wait", wait.String(),
			"error", err,
		)
		if !sleep(ctx, wait) {
			return err
		}
		wait = min(time.Duration(float64(wait)*e.cfg.RetryMultiplier), e.cfg.RetryMaxBackoff)
	}
}

// sleep waits for d or until ctx ends; false means the context won.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Executor) breakerFor(operation string, classify ErrorClassifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}
	breaker := gobreaker.NewCircuitBreaker[any](e.breakerSettings(operation, classify))
	e.breakers[operation] = breaker
	return breaker
}

func (e *Executor) breakerSettings(operation string, classify ErrorClassifier) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        operation,
		MaxRequests: e.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("external_call_breaker_state",
				"operation", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
}

// IsCircuitOpen reports whether err came from an open or saturated breaker
// rather than from the operation itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
