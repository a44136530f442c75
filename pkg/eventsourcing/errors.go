package eventsourcing

import (
	"errors"
	"fmt"
)

var (
	// ErrAggregateNotFound is returned when an aggregate's stream is empty.
	ErrAggregateNotFound = errors.New("aggregate not found")

	// ErrConcurrencyConflict is returned when an append's expected version
	// does not match the stream's current version.
	ErrConcurrencyConflict = errors.New("concurrency conflict: stream version mismatch")

	// ErrInvalidOperation is returned when a domain invariant would be violated.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrUnknownEventType is returned when a type tag has no registered factory.
	ErrUnknownEventType = errors.New("unknown event type")
)

// InvalidOperationError carries the reason a domain invariant was violated.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation: %s", e.Reason)
}

func (e *InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

// NewInvalidOperation creates an InvalidOperationError with a formatted reason.
func NewInvalidOperation(format string, args ...any) error {
	return &InvalidOperationError{Reason: fmt.Sprintf(format, args...)}
}
