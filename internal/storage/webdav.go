// Package storage implements WebDAV storage writer.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	gowebdav "github.com/studio-b12/gowebdav"

	"github.com/jittakal/bufstore/internal/codec"
	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
	"github.com/jittakal/bufstore/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Writer = (*WebDAVWriter)(nil)

// WebDAVConfig contains WebDAV storage configuration.
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	Root     string
}

// WebDAVWriter implements storage.Writer for WebDAV servers such as
// Nextcloud or ownCloud. Snapshots upload as single PUT requests under
// the configured root collection.
type WebDAVWriter struct {
	client       *gowebdav.Client
	root         string
	codecFactory *codec.Factory
	logger       *slog.Logger
	metrics      MetricsCollector
	mu           sync.Mutex
}

// NewWebDAVWriter creates a new WebDAV storage writer.
func NewWebDAVWriter(
	cfg WebDAVConfig,
	codecFactory *codec.Factory,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*WebDAVWriter, error) {
	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)

	// Probe the server so misconfiguration fails at startup, not first write
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to WebDAV server: %w", err)
	}

	// Validate codec can be created
	if _, err := codecFactory.Create(); err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}

	logger.Info("WebDAV writer created",
		"url", cfg.URL,
		"root", cfg.Root,
	)

	return &WebDAVWriter{
		client:       client,
		root:         cfg.Root,
		codecFactory: codecFactory,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// Write writes a snapshot to the WebDAV server.
func (w *WebDAVWriter) Write(
	ctx context.Context,
	snap *sample.Snapshot,
	routedPath string,
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

	remoteDir := path.Join("/", w.root, routedPath)
	remotePath := path.Join(remoteDir, snapshotFilename(snap.Label, fileCodec.FileExtension()))

	// Encode to temporary file
	tempFile := filepath.Join(os.TempDir(), fmt.Sprintf("webdav-upload-%d%s", time.Now().UnixNano(), fileCodec.FileExtension()))

	stats, err := fileCodec.Encode(tempFile, snap)
	if err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "write", Path: tempFile, Err: err}
	}
	defer os.Remove(tempFile)

	data, err := os.ReadFile(tempFile)
	if err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, fmt.Errorf("failed to read encoded file: %w", err)
	}

	// Ensure the routed collection exists
	if err := w.client.MkdirAll(remoteDir, 0o755); err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "create", Path: remoteDir, Err: err}
	}

	// Upload via a single PUT
	if err := w.client.Write(remotePath, data, 0o644); err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "upload", Path: remotePath, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote snapshot to WebDAV",
		"path", remotePath,
		"label", snap.Label,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"format", format,
		"total_duration_ms", duration.Milliseconds(),
	)

	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(snap.Label, string(format), "success")
		w.metrics.ObserveSnapshotSize(snap.Label, string(format), float64(stats.SizeBytes))
		w.metrics.ObserveStorageWriteDuration("webdav", duration.Seconds())
	}

	return stats.SizeBytes, nil
}

func (w *WebDAVWriter) observeStatus(label string, format sample.Format, status string) {
	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(label, string(format), status)
	}
}

// Close closes the WebDAV writer.
func (w *WebDAVWriter) Close() error {
	w.logger.Info("closing WebDAV writer")
	return nil
}
