// Package storage implements the storage backend factory.
package storage

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jittakal/bufstore/internal/codec"
	"github.com/jittakal/bufstore/internal/config/dto"
	"github.com/jittakal/bufstore/pkg/storage"
)

// defaultBasePath is the root prefix for routed snapshots when the
// backend configuration does not set one.
const defaultBasePath = "buffers"

// NewWriter creates a storage writer for the configured backend.
func NewWriter(
	cfg dto.StorageConfig,
	codecFactory *codec.Factory,
	logger *slog.Logger,
	metrics MetricsCollector,
) (storage.Writer, error) {
	switch cfg.Type {
	case "file":
		return NewFileWriter(FileConfig{
			Directory: cfg.File.Directory,
		}, codecFactory, logger, metrics)
	case "s3":
		return NewS3Writer(S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
			SSEEnabled:   cfg.S3.SSEEnabled,
			SSEKMSKeyID:  cfg.S3.SSEKMSKeyID,
		}, codecFactory, logger, metrics)
	case "azure":
		accountKey := cfg.Azure.AccountKey
		if accountKey == "" {
			accountKey = os.Getenv("AZURE_STORAGE_ACCOUNT_KEY")
		}
		return NewAzureWriter(AzureConfig{
			AccountName: cfg.Azure.AccountName,
			AccountKey:  accountKey,
			Container:   cfg.Azure.Container,
			Endpoint:    cfg.Azure.Endpoint,
		}, codecFactory, logger, metrics)
	case "gcs":
		credentialsJSON := cfg.GCS.CredentialsJSON
		if credentialsJSON == "" {
			credentialsJSON = os.Getenv("GCP_CREDENTIALS_JSON")
		}
		return NewGCSWriter(GCSConfig{
			Bucket:               cfg.GCS.Bucket,
			ProjectID:            cfg.GCS.ProjectID,
			CredentialsFile:      cfg.GCS.CredentialsFile,
			CredentialsJSON:      credentialsJSON,
			UseDefaultCredential: cfg.GCS.UseDefaultCredential,
		}, codecFactory, logger, metrics)
	case "webdav":
		return NewWebDAVWriter(WebDAVConfig{
			URL:      cfg.WebDAV.URL,
			Username: cfg.WebDAV.Username,
			Password: cfg.WebDAV.Password,
			Root:     cfg.WebDAV.Root,
		}, codecFactory, logger, metrics)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: file, s3, azure, gcs, webdav)", cfg.Type)
	}
}

// NewRouterFor builds the snapshot router for the configured backend.
// Object stores get full URIs so writers can verify and trim the bucket
// segment; file and WebDAV backends get prefixes relative to their roots.
func NewRouterFor(cfg dto.StorageConfig) *LabelRouter {
	switch cfg.Type {
	case "s3":
		return NewLabelRouter("s3", cfg.S3.Bucket, basePathOr(cfg.S3.BasePath))
	case "azure":
		return NewLabelRouter("wasbs", cfg.Azure.Container, defaultBasePath)
	case "gcs":
		return NewLabelRouter("gs", cfg.GCS.Bucket, basePathOr(cfg.GCS.BasePath))
	default:
		return NewLabelRouter("", "", defaultBasePath)
	}
}

func basePathOr(basePath string) string {
	if basePath == "" {
		return defaultBasePath
	}
	return basePath
}
