package resilience

import (
	"context"
	"errors"
	"net"
)

// ClassifyNetworkError is a generic classifier for plain HTTP clients:
// cancellation is final, transport-level faults are retryable, anything
// else is a recorded permanent failure.
func ClassifyNetworkError(err error) ErrorClassification {
	if err == nil {
		return ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if IsCircuitOpen(err) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return ErrorClassification{Retryable: false, RecordFailure: true}
}
