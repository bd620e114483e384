package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

func retryOnlyConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesTransientExtractionFailure(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig())

	attempts := 0
	errTransient := domain.WrapError(domain.ErrExternalService, "extraction service", errors.New("status 503"))
	err := exec.Execute(context.Background(), "docintel_analyze", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	}, ExternalServiceClassifier)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteNilClassifierRetriesExternalServiceErrors(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig())

	attempts := 0
	errTransient := domain.WrapError(domain.ErrExternalService, "extraction service", errors.New("status 503"))
	err := exec.Execute(context.Background(), "docintel_analyze", func(context.Context) error {
		attempts++
		if attempts < 2 {
			return errTransient
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("nil classifier must retry transient service errors, got %d attempts", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig())

	attempts := 0
	errPermanent := errors.New("analyze response is not json")
	err := exec.Execute(context.Background(), "docintel_analyze", func(context.Context) error {
		attempts++
		return errPermanent
	}, ExternalServiceClassifier)
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteStopsRetryingOnCancel(t *testing.T) {
	exec := NewExecutor(retryOnlyConfig())
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	errTransient := domain.WrapError(domain.ErrExternalService, "extraction service", errors.New("status 500"))
	err := exec.Execute(ctx, "docintel_analyze", func(context.Context) error {
		attempts++
		cancel()
		return errTransient
	}, ExternalServiceClassifier)
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected the operation error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("cancelled context must stop the retry loop, got %d attempts", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := domain.WrapError(domain.ErrExternalService, "extraction service", errors.New("status 502"))
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "docintel_analyze", func(context.Context) error {
			return errDown
		}, ExternalServiceClassifier)
		if !errors.Is(err, errDown) {
			t.Fatalf("expected service error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "docintel_analyze", func(context.Context) error {
		t.Fatal("circuit should be open and must not call the service")
		return nil
	}, ExternalServiceClassifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatal("IsCircuitOpen must recognize the open breaker")
	}
}

func TestExternalServiceClassifier(t *testing.T) {
	transient := ExternalServiceClassifier(
		domain.WrapError(domain.ErrExternalService, "extraction service", errors.New("status 503")))
	if !transient.Retryable || !transient.RecordFailure {
		t.Fatalf("external service error classification = %+v", transient)
	}

	cancelled := ExternalServiceClassifier(context.Canceled)
	if cancelled.Retryable || cancelled.RecordFailure {
		t.Fatalf("cancellation classification = %+v, must not count against the breaker", cancelled)
	}

	permanent := ExternalServiceClassifier(errors.New("rejected request: status 415"))
	if permanent.Retryable {
		t.Fatalf("4xx-style error classification = %+v, must be permanent", permanent)
	}
	if !permanent.RecordFailure {
		t.Fatal("permanent failures still count against the breaker")
	}
}
