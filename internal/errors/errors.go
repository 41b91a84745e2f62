// Package errors defines application-specific error types and sentinel errors.
package errors

import (
	"errors"
	"fmt"

	"github.com/jittakal/bufstore/pkg/sample"
)

// Sentinel errors for common conditions.
var (
	ErrConsumerClosed    = errors.New("consumer is closed")
	ErrInvalidSample     = errors.New("invalid sample")
	ErrSnapshotterClosed = errors.New("snapshotter is closed")
	ErrWriterClosed      = errors.New("storage writer is closed")
	ErrConnectionLost    = errors.New("connection lost")
)

// IngestError represents an error while routing a consumed sample into a buffer.
type IngestError struct {
	PartitionID sample.PartitionID
	Offset      int64
	Label       string
	Err         error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest error: partition=%s offset=%d label=%s: %v",
		e.PartitionID, e.Offset, e.Label, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// ValidationError represents a sample validation failure.
type ValidationError struct {
	Label  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: label=%s field=%s: %s",
		e.Label, e.Field, e.Reason)
}

// SnapshotError represents a failure while capturing or encoding a snapshot.
type SnapshotError struct {
	Label  string
	Format sample.Format
	Err    error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot error: label=%s format=%s: %v",
		e.Label, e.Format, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// StorageError represents a storage operation failure.
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: operation=%s path=%s: %v",
		e.Operation, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// CommitError represents an offset commit failure.
type CommitError struct {
	PartitionID sample.PartitionID
	Offset      int64
	Err         error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit error: partition=%s offset=%d: %v",
		e.PartitionID, e.Offset, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Retryable defines an interface for errors that can indicate if they are retryable.
type Retryable interface {
	error
	IsRetryable() bool
}

// IsRetryable checks if an error is retryable.
// It first checks if the error implements the Retryable interface,
// then falls back to checking specific error types and sentinel errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Check if error implements Retryable interface
	var retryable Retryable
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	// Check sentinel errors
	if errors.Is(err, ErrConnectionLost) {
		return true
	}

	return false
}

// IsRetryable determines if a StorageError is retryable based on the operation type.
func (e *StorageError) IsRetryable() bool {
	// Write and upload operations are generally retryable
	return e.Operation == "write" || e.Operation == "upload" || e.Operation == "create"
}

// IsRetryable determines if an IngestError is retryable.
func (e *IngestError) IsRetryable() bool {
	// Check if the underlying error is retryable
	return IsRetryable(e.Err)
}

// IsRetryable determines if a SnapshotError is retryable.
func (e *SnapshotError) IsRetryable() bool {
	return IsRetryable(e.Err)
}
