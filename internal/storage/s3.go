// Package storage implements S3 storage writer.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jittakal/bufstore/internal/codec"
	"github.com/jittakal/bufstore/internal/errors"
	"github.com/jittakal/bufstore/pkg/sample"
	"github.com/jittakal/bufstore/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Writer = (*S3Writer)(nil)

// S3Config contains AWS S3 configuration.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	SSEEnabled   bool
	SSEKMSKeyID  string
}

// S3Writer implements storage.Writer for AWS S3 storage.
// It provides multipart upload support, server-side encryption (SSE),
// and S3-compatible endpoints such as MinIO via static credentials
// and path-style addressing.
type S3Writer struct {
	client       *s3.Client
	uploader     *manager.Uploader
	bucket       string
	region       string
	sseEnabled   bool
	sseKMSKeyID  string
	codecFactory *codec.Factory
	logger       *slog.Logger
	metrics      MetricsCollector
	mu           sync.Mutex
}

// NewS3Writer creates a new S3 storage writer.
func NewS3Writer(
	cfg S3Config,
	codecFactory *codec.Factory,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*S3Writer, error) {
	// Load AWS config
	ctx := context.Background()
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client
	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	// Create uploader with multipart upload support
	uploader := manager.NewUploader(s3Client, func(u *manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024 // 10MB parts
		u.Concurrency = 5             // 5 concurrent uploads
	})

	// Validate codec can be created
	if _, err := codecFactory.Create(); err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}

	logger.Info("S3 writer created",
		"bucket", cfg.Bucket,
		"region", cfg.Region,
		"sse_enabled", cfg.SSEEnabled,
	)

	return &S3Writer{
		client:       s3Client,
		uploader:     uploader,
		bucket:       cfg.Bucket,
		region:       cfg.Region,
		sseEnabled:   cfg.SSEEnabled,
		sseKMSKeyID:  cfg.SSEKMSKeyID,
		codecFactory: codecFactory,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// Write writes a snapshot to S3.
func (w *S3Writer) Write(
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

	// Routed paths arrive as s3://bucket/key/prefix/ or a bare prefix
	s3Key := objectKey(path, "s3://", snapshotFilename(snap.Label, fileCodec.FileExtension()))

	// Encode to temporary file
	tempFile := filepath.Join(os.TempDir(), fmt.Sprintf("s3-upload-%d%s", time.Now().UnixNano(), fileCodec.FileExtension()))

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

	// Prepare upload input
	uploadInput := &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(s3Key),
		Body:   file,
	}

	// Add SSE if enabled
	if w.sseEnabled {
		if w.sseKMSKeyID != "" {
			uploadInput.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			uploadInput.SSEKMSKeyId = aws.String(w.sseKMSKeyID)
		} else {
			uploadInput.ServerSideEncryption = types.ServerSideEncryptionAes256
		}
	}

	// Upload to S3
	result, err := w.uploader.Upload(ctx, uploadInput)
	if err != nil {
		w.observeStatus(snap.Label, format, "error")
		return 0, &errors.StorageError{Operation: "upload", Path: s3Key, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote snapshot to S3",
		"bucket", w.bucket,
		"key", s3Key,
		"label", snap.Label,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"format", format,
		"location", result.Location,
		"total_duration_ms", duration.Milliseconds(),
	)

	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(snap.Label, string(format), "success")
		w.metrics.ObserveSnapshotSize(snap.Label, string(format), float64(stats.SizeBytes))
		w.metrics.ObserveStorageWriteDuration("s3", duration.Seconds())
	}

	return stats.SizeBytes, nil
}

func (w *S3Writer) observeStatus(label string, format sample.Format, status string) {
	if w.metrics != nil {
		w.metrics.IncSnapshotsWritten(label, string(format), status)
	}
}

// Close closes the S3 writer.
func (w *S3Writer) Close() error {
	w.logger.Info("closing S3 writer")
	return nil
}
