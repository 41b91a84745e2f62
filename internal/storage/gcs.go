// Package storage implements Google Cloud Storage writer.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jittakal/bufstore/internal/codec"
	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
	"github.com/jittakal/bufstore/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Writer = (*GCSWriter)(nil)

// GCSConfig contains Google Cloud Storage configuration.
type GCSConfig struct {
	Bucket               string
	ProjectID            string
	CredentialsFile      string
	CredentialsJSON      string
	Endpoint             string
	UseDefaultCredential bool
}

// GCSWriter implements storage.Writer for Google Cloud Storage.
// It supports service account file, inline JSON and application default
// credentials, and uploads one object per snapshot.
type GCSWriter struct {
	client       *gcstorage.Client
	bucket       string
	codecFactory *codec.Factory
	logger       *slog.Logger
	metrics      MetricsCollector
	mu           sync.Mutex
}

// NewGCSWriter creates a new Google Cloud Storage writer.
func NewGCSWriter(
	cfg GCSConfig,
	codecFactory *codec.Factory,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*GCSWriter, error) {
	ctx := context.Background()

	// Determine authentication method
	var clientOpts []option.ClientOption
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}

	if cfg.UseDefaultCredential {
		// This will use GOOGLE_APPLICATION_CREDENTIALS env var or default service account
		logger.Info("using default GCP credentials")
	} else if cfg.CredentialsJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
		logger.Info("using GCP credentials from JSON string")
	} else if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
		logger.Info("using GCP credentials from file", "file", cfg.CredentialsFile)
	} else {
		logger.Info("no explicit credentials provided, using default GCP credentials")
	}

	// Create GCS client
	client, err := gcstorage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	// Validate codec can be created
	if _, err := codecFactory.Create(); err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}

	logger.Info("GCS writer created",
		"bucket", cfg.Bucket,
		"project_id", cfg.ProjectID,
	)

	return &GCSWriter{
		client:       client,
		bucket:       cfg.Bucket,
		codecFactory: codecFactory,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// Write writes a snapshot to Google Cloud Storage.
func (w *GCSWriter) Write(
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

	// Routed paths arrive as gs://bucket/object/prefix/ or a bare prefix
	objectPath := objectKey(path, "gs://", snapshotFilename(snap.Label, fileCodec.FileExtension()))

	// Encode to temporary file
	tempFile := filepath.Join(os.TempDir(), fmt.Sprintf("gcs-upload-%d%s", time.Now().UnixNano(), fileCodec.FileExtension()))

	stats, err := fileCodec.Encode(tempFile, snap)
	if err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "write", Path: tempFile, Err: err}
	}
	defer os.Remove(tempFile)

	// Open the file for upload
	file, err := os.Open(tempFile)
	if err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, fmt.Errorf("failed to open encoded file: %w", err)
	}
	defer file.Close()

	// Create GCS object writer
	obj := w.client.Bucket(w.bucket).Object(objectPath)
	gcsWriter := obj.NewWriter(ctx)
	gcsWriter.ContentType = contentTypeFor(format)

	// Copy file to GCS
	bytesWritten, err := io.Copy(gcsWriter, file)
	if err != nil {
		gcsWriter.Close()
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "upload", Path: objectPath, Err: err}
	}

	// Close the writer to finalize the upload
	if err := gcsWriter.Close(); err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "upload", Path: objectPath, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote snapshot to GCS",
		"bucket", w.bucket,
		"object", objectPath,
		"label", snap.Label,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"bytes_written", bytesWritten,
		"format", format,
		"total_duration_ms", duration.Milliseconds(),
	)

	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(snap.Label, string(format), "success")
		w.metrics.ObserveSnapshotSize(snap.Label, string(format), float64(stats.SizeBytes))
		w.metrics.ObserveStorageWriteDuration("gcs", duration.Seconds())
	}

	return stats.SizeBytes, nil
}

// contentTypeFor maps a snapshot format to its upload content type.
func contentTypeFor(format sample.Format) string {
	switch format {
	case sample.FormatJSON:
		return "application/json"
	case sample.FormatCSV:
		return "text/csv"
	case sample.FormatYAML:
		return "application/yaml"
	case sample.FormatAvro:
		return "application/avro"
	default:
		return "application/octet-stream"
	}
}

func (w *GCSWriter) observeStatus(label string, format sample.Format, status string) {
	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(label, string(format), status)
	}
}

// Close closes the GCS writer.
func (w *GCSWriter) Close() error {
	w.logger.Info("closing GCS writer")
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}
