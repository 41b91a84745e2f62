// Package storage implements Azure Blob storage writer.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/jittakal/bufstore/internal/codec"
	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
	"github.com/jittakal/bufstore/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Writer = (*AzureWriter)(nil)

// AzureConfig contains Azure Blob Storage configuration.
type AzureConfig struct {
	AccountName string
	AccountKey  string
	Container   string
	Endpoint    string
}

// AzureWriter implements storage.Writer for Azure Blob Storage.
// It authenticates with an account key connection string and uploads
// one blob per snapshot under the routed prefix.
type AzureWriter struct {
	client       *azblob.Client
	container    string
	codecFactory *codec.Factory
	logger       *slog.Logger
	metrics      MetricsCollector
	mu           sync.Mutex
}

// NewAzureWriter creates a new Azure Blob storage writer.
func NewAzureWriter(
	cfg AzureConfig,
	codecFactory *codec.Factory,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*AzureWriter, error) {
	// Build connection string
	var connectionString string
	if cfg.Endpoint != "" {
		connectionString = fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;BlobEndpoint=%s",
			cfg.AccountName, cfg.AccountKey, cfg.Endpoint)
	} else {
		connectionString = fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=core.windows.net",
			cfg.AccountName, cfg.AccountKey)
	}

	// Create Azure client
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	// Validate codec can be created
	if _, err := codecFactory.Create(); err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}

	logger.Info("Azure writer created",
		"container", cfg.Container,
		"account", cfg.AccountName,
	)

	return &AzureWriter{
		client:       client,
		container:    cfg.Container,
		codecFactory: codecFactory,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// Write writes a snapshot to Azure Blob Storage.
func (w *AzureWriter) Write(ctx context.Context, snap *sample.Snapshot, path string, format sample.Format) (int64, error) {
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

	// Routed paths arrive as wasbs://container/prefix/ or a bare prefix
	blobPath := objectKey(path, "wasbs://", snapshotFilename(snap.Label, fileCodec.FileExtension()))

	// Encode to temporary file
	tempFile := filepath.Join(os.TempDir(), fmt.Sprintf("azure-upload-%d%s", time.Now().UnixNano(), fileCodec.FileExtension()))

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

	// Upload to Azure Blob
	_, err = w.client.UploadFile(ctx, w.container, blobPath, file, nil)
	if err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "upload", Path: blobPath, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote snapshot to Azure Blob",
		"container", w.container,
		"blob", blobPath,
		"label", snap.Label,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"format", format,
		"total_duration_ms", duration.Milliseconds(),
	)

	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(snap.Label, string(format), "success")
		w.metrics.ObserveSnapshotSize(snap.Label, string(format), float64(stats.SizeBytes))
		w.metrics.ObserveStorageWriteDuration("azure", duration.Seconds())
	}

	return stats.SizeBytes, nil
}

func (w *AzureWriter) observeStatus(label string, format sample.Format, status string) {
	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(label, string(format), status)
	}
}

// Close closes the Azure writer.
func (w *AzureWriter) Close() error {
	w.logger.Info("Azure writer closed")
	return nil
}
