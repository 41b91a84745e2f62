package dto

import (
	"fmt"
	"time"
)

// Config is the root configuration structure
type Config struct {
	App      AppInfo        `mapstructure:"app"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Buffers  BuffersConfig  `mapstructure:"buffers"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	DLQ      DLQConfig      `mapstructure:"dlq"`
}

// AppInfo contains application metadata
type AppInfo struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// KafkaConfig contains Kafka consumer configuration
type KafkaConfig struct {
	BootstrapServers    []string `mapstructure:"bootstrap_servers"`
	GroupID             string   `mapstructure:"group_id"`
	Topics              []string `mapstructure:"topics"`
	SecurityProtocol    string   `mapstructure:"security_protocol"`
	SASLMechanism       string   `mapstructure:"sasl_mechanism"`
	SASLUsername        string   `mapstructure:"sasl_username"`
	SASLPassword        string   `mapstructure:"sasl_password"`
	AutoOffsetReset     string   `mapstructure:"auto_offset_reset"`
	EnableAutoCommit    bool     `mapstructure:"enable_auto_commit"`
	SessionTimeoutMS    int      `mapstructure:"session_timeout_ms"`
	HeartbeatIntervalMS int      `mapstructure:"heartbeat_interval_ms"`
	MaxPollIntervalMS   int      `mapstructure:"max_poll_interval_ms"`
	Envelope            string   `mapstructure:"envelope"`
}

// BuffersConfig contains buffer set configuration
type BuffersConfig struct {
	Labels    []string `mapstructure:"labels"`
	Capacity  int      `mapstructure:"capacity"`
	Strict    bool     `mapstructure:"strict"`
	AllowNull bool     `mapstructure:"allow_null"`
}

// SnapshotConfig contains snapshot capture settings
type SnapshotConfig struct {
	Format      string        `mapstructure:"format"`
	Compression string        `mapstructure:"compression"`
	Delimiter   string        `mapstructure:"delimiter"`
	Interval    time.Duration `mapstructure:"interval"`
	MaxSamples  int           `mapstructure:"max_samples"`
	ClearAfter  bool          `mapstructure:"clear_after"`
}

// StorageConfig contains storage backend configuration
type StorageConfig struct {
	Type   string       `mapstructure:"type"`
	File   FileConfig   `mapstructure:"file"`
	S3     S3Config     `mapstructure:"s3"`
	Azure  AzureConfig  `mapstructure:"azure"`
	GCS    GCSConfig    `mapstructure:"gcs"`
	WebDAV WebDAVConfig `mapstructure:"webdav"`
}

// FileConfig contains local filesystem configuration
type FileConfig struct {
	Directory string `mapstructure:"directory"`
}

// S3Config contains AWS S3 configuration
type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	BasePath     string `mapstructure:"base_path"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	SSEEnabled   bool   `mapstructure:"sse_enabled"`
	SSEKMSKeyID  string `mapstructure:"sse_kms_key_id"`
}

// AzureConfig contains Azure Blob Storage configuration
type AzureConfig struct {
	AccountName string `mapstructure:"account_name"`
	AccountKey  string `mapstructure:"account_key"`
	Container   string `mapstructure:"container"`
	Endpoint    string `mapstructure:"endpoint"`
}

// GCSConfig contains Google Cloud Storage configuration
type GCSConfig struct {
	Bucket               string `mapstructure:"bucket"`
	ProjectID            string `mapstructure:"project_id"`
	BasePath             string `mapstructure:"base_path"`
	CredentialsFile      string `mapstructure:"credentials_file"`
	CredentialsJSON      string `mapstructure:"credentials_json"`
	UseDefaultCredential bool   `mapstructure:"use_default_credential"`
}

// WebDAVConfig contains WebDAV storage configuration
type WebDAVConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Root     string `mapstructure:"root"`
}

// ServerConfig contains health and metrics server settings
type ServerConfig struct {
	HealthPort  int `mapstructure:"health_port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DLQConfig contains dead letter queue configuration
type DLQConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	TopicSuffix string `mapstructure:"topic_suffix"`
	MaxRetries  int    `mapstructure:"max_retries"`
}

// Validate validates the root configuration.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if len(c.Kafka.BootstrapServers) == 0 {
		return fmt.Errorf("kafka bootstrap servers are required")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("kafka consumer group ID is required")
	}
	if len(c.Buffers.Labels) == 0 {
		return fmt.Errorf("buffer labels are required")
	}
	if c.Storage.Type == "" {
		return fmt.Errorf("storage type is required")
	}
	return nil
}

// Validate validates S3 configuration.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if c.Region == "" {
		return fmt.Errorf("s3 region is required")
	}
	return nil
}

// Validate validates Azure configuration.
func (c *AzureConfig) Validate() error {
	if c.AccountName == "" {
		return fmt.Errorf("azure account name is required")
	}
	if c.Container == "" {
		return fmt.Errorf("azure container is required")
	}
	return nil
}

// Validate validates GCS configuration.
func (c *GCSConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("gcs bucket is required")
	}
	return nil
}

// Validate validates WebDAV configuration.
func (c *WebDAVConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("webdav url is required")
	}
	return nil
}

// Validate validates file configuration.
func (c *FileConfig) Validate() error {
	if c.Directory == "" {
		return fmt.Errorf("file directory is required")
	}
	return nil
}
