package buffer

import "errors"

// Sentinel errors for buffer and manager operations.
var (
	// ErrOutOfRange reports an index outside [-len, len-1], or a zero
	// stride step.
	ErrOutOfRange = errors.New("index out of range")

	// ErrEmpty reports an aggregate operation on a buffer with too few
	// elements.
	ErrEmpty = errors.New("buffer is empty")

	// ErrNotNumeric reports a numeric operation over a non-numeric element.
	ErrNotNumeric = errors.New("element is not numeric")

	// ErrNotComparable reports elements that are not mutually ordered.
	ErrNotComparable = errors.New("elements are not comparable")

	// ErrUnknownLabel reports a label outside the manager's configured set.
	ErrUnknownLabel = errors.New("unknown buffer label")

	// ErrInvalidCapacity reports a non-positive capacity.
	ErrInvalidCapacity = errors.New("capacity must be positive")
)
