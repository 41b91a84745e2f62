package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/jittakal/bufstore/internal/config/dto"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Loader handles configuration loading and validation
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BUFSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load loads configuration from file and environment variables
func (l *Loader) Load(path string) (*dto.Config, error) {
	// Set defaults
	l.setDefaults()

	// Load from file if provided
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Expand environment variables in config values
	// Only expand if the value contains ${...} pattern
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	// Unmarshal configuration
	var config dto.Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Application defaults
	l.v.SetDefault("app.name", "bufstore")
	l.v.SetDefault("app.version", "1.0.0")
	l.v.SetDefault("app.environment", "development")

	// Kafka defaults
	l.v.SetDefault("kafka.security_protocol", "PLAINTEXT")
	l.v.SetDefault("kafka.sasl_mechanism", "PLAIN")
	l.v.SetDefault("kafka.auto_offset_reset", "earliest")
	l.v.SetDefault("kafka.enable_auto_commit", false)
	l.v.SetDefault("kafka.session_timeout_ms", 30000)
	l.v.SetDefault("kafka.heartbeat_interval_ms", 10000)
	l.v.SetDefault("kafka.max_poll_interval_ms", 300000)
	l.v.SetDefault("kafka.envelope", "plain")

	// Buffer defaults
	l.v.SetDefault("buffers.capacity", 0) // 0 uses the library default
	l.v.SetDefault("buffers.strict", false)
	l.v.SetDefault("buffers.allow_null", true)

	// Snapshot defaults
	l.v.SetDefault("snapshot.format", "json")
	l.v.SetDefault("snapshot.compression", "snappy")
	l.v.SetDefault("snapshot.delimiter", ",")
	l.v.SetDefault("snapshot.interval", "60s")
	l.v.SetDefault("snapshot.max_samples", 0)
	l.v.SetDefault("snapshot.clear_after", false)

	// Storage defaults
	l.v.SetDefault("storage.type", "file")
	l.v.SetDefault("storage.file.directory", "./data")
	l.v.SetDefault("storage.s3.use_path_style", false)
	l.v.SetDefault("storage.s3.sse_enabled", true)

	// Server defaults
	l.v.SetDefault("server.health_port", 8081)
	l.v.SetDefault("server.metrics_port", 9090)

	// Logging defaults
	l.v.SetDefault("logging.level", "info")
	l.v.SetDefault("logging.format", "json")
	l.v.SetDefault("logging.output", "stdout")

	// DLQ defaults
	l.v.SetDefault("dlq.enabled", true)
	l.v.SetDefault("dlq.topic_suffix", ".dlq")
	l.v.SetDefault("dlq.max_retries", 3)
}

// Validate validates the configuration
func (l *Loader) Validate(config *dto.Config) error {
	// Kafka validation
	if len(config.Kafka.BootstrapServers) == 0 {
		return errors.New("kafka.bootstrap_servers is required")
	}
	if len(config.Kafka.Topics) == 0 {
		return errors.New("kafka.topics is required")
	}
	if config.Kafka.GroupID == "" {
		return errors.New("kafka.group_id is required")
	}
	if config.Kafka.Envelope != "plain" && config.Kafka.Envelope != "cloudevents" {
		return fmt.Errorf("unsupported kafka envelope mode: %s", config.Kafka.Envelope)
	}

	// Buffer validation
	if len(config.Buffers.Labels) == 0 {
		return errors.New("buffers.labels is required")
	}
	if config.Buffers.Capacity < 0 {
		return fmt.Errorf("invalid buffer capacity: %d", config.Buffers.Capacity)
	}

	// Snapshot validation
	if _, err := sample.ParseFormat(config.Snapshot.Format); err != nil {
		return fmt.Errorf("snapshot.format: %w", err)
	}
	if config.Snapshot.Delimiter != "" && utf8.RuneCountInString(config.Snapshot.Delimiter) != 1 {
		return fmt.Errorf("snapshot.delimiter must be a single character, got %q", config.Snapshot.Delimiter)
	}

	// Storage validation
	switch config.Storage.Type {
	case "s3":
		if err := config.Storage.S3.Validate(); err != nil {
			return err
		}
	case "azure":
		if err := config.Storage.Azure.Validate(); err != nil {
			return err
		}
	case "gcs":
		if err := config.Storage.GCS.Validate(); err != nil {
			return err
		}
	case "webdav":
		if err := config.Storage.WebDAV.Validate(); err != nil {
			return err
		}
	case "file":
		if err := config.Storage.File.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}

	// Port validation
	if config.Server.MetricsPort < 1 || config.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", config.Server.MetricsPort)
	}
	if config.Server.HealthPort < 1 || config.Server.HealthPort > 65535 {
		return fmt.Errorf("invalid health port: %d", config.Server.HealthPort)
	}

	return nil
}
