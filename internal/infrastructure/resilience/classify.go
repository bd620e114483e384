package resilience

import (
	"context"
	"errors"
	"net"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

// ErrorClassification decides what a failed call means for the retry loop
// and the circuit breaker.
type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
}

type ErrorClassifier func(err error) ErrorClassification

// ExternalServiceClassifier treats transport-level failures as retryable and
// everything else (including malformed responses) as permanent. Context
// cancellation never counts against the breaker.
func ExternalServiceClassifier(err error) ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}
	if domain.IsKind(err, domain.ErrExternalService) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return ErrorClassification{Retryable: false, RecordFailure: true}
}
