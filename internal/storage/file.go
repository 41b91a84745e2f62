// Package storage implements storage writer implementations.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jittakal/bufstore/internal/codec"
	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
	"github.com/jittakal/bufstore/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Writer = (*FileWriter)(nil)

// MetricsCollector defines metrics operations for storage.
type MetricsCollector interface {
	IncSnapshotsWritten(label, format, status string)
	ObserveSnapshotSize(label, format string, size float64)
	ObserveStorageWriteDuration(backend string, duration float64)
}

// FileConfig contains local filesystem configuration.
type FileConfig struct {
	Directory string
}

// FileWriter implements storage.Writer for local filesystem storage.
// Snapshots land under the configured directory in the routed prefix,
// one file per snapshot with a timestamped, collision-free name.
type FileWriter struct {
	directory    string
	codecFactory *codec.Factory
	logger       *slog.Logger
	metrics      MetricsCollector
	mu           sync.Mutex
}

// NewFileWriter creates a new filesystem storage writer.
func NewFileWriter(
	cfg FileConfig,
	codecFactory *codec.Factory,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*FileWriter, error) {
	// Ensure base directory exists
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	// Validate codec can be created
	if _, err := codecFactory.Create(); err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}

	logger.Info("filesystem writer created",
		"directory", cfg.Directory,
	)

	return &FileWriter{
		directory:    cfg.Directory,
		codecFactory: codecFactory,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// Write writes a snapshot to the filesystem.
func (w *FileWriter) Write(
	ctx context.Context,
	snap *sample.Snapshot,
	path string,
	format sample.Format,
) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(snap.Values) == 0 {
		return 0, fmt.Errorf("no values to write")
	}

	startTime := time.Now()

	fileCodec, err := w.codecFactory.Create()
	if err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, fmt.Errorf("failed to create codec: %w", err)
	}

	// Strip file:// protocol prefix if present
	cleanPath := strings.TrimPrefix(path, "file://")

	dir := filepath.Join(w.directory, cleanPath)
	fullPath := filepath.Join(dir, snapshotFilename(snap.Label, fileCodec.FileExtension()))

	// Ensure routed directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "create", Path: dir, Err: err}
	}

	stats, err := fileCodec.Encode(fullPath, snap)
	if err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "write", Path: fullPath, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote snapshot to file",
		"path", fullPath,
		"label", snap.Label,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"format", format,
		"total_duration_ms", duration.Milliseconds(),
	)

	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(snap.Label, string(format), "success")
		w.metrics.ObserveSnapshotSize(snap.Label, string(format), float64(stats.SizeBytes))
		w.metrics.ObserveStorageWriteDuration("file", duration.Seconds())
	}

	return stats.SizeBytes, nil
}

func (w *FileWriter) observeStatus(label string, format sample.Format, status string) {
	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(label, string(format), status)
	}
}

// Close closes the writer.
func (w *FileWriter) Close() error {
	w.logger.Info("closing filesystem writer")
	return nil
}
