// Package storage defines interfaces for snapshot storage operations.
//
// This package provides abstractions for writing buffer snapshots to
// various storage backends (S3, Azure Blob, GCS, WebDAV, local filesystem).
package storage

import (
	"context"

	"github.com/jittakal/bufstore/pkg/sample"
)

// Writer writes buffer snapshots to storage.
type Writer interface {
	// Write writes a snapshot to storage at the specified path.
	// Returns the number of bytes written.
	Write(ctx context.Context, snap *sample.Snapshot, path string, format sample.Format) (int64, error)

	// Close closes the writer and releases resources.
	Close() error
}

// Router determines storage paths for snapshots based on partitioning strategy.
type Router interface {
	// Route returns the storage path prefix for a buffer label at a given time.
	Route(label string, takenAt int64) string
}

// SnapshotPolicy determines when a buffer's contents should be snapshotted.
type SnapshotPolicy interface {
	// ShouldSnapshot returns true if the buffer should be captured based on stats.
	ShouldSnapshot(stats sample.FileStats) bool
}
