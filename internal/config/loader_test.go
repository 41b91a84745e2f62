package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jittakal/bufstore/internal/config/dto"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("expected non-nil loader")
	}
	if loader.v == nil {
		t.Fatal("expected non-nil viper instance")
	}
}

func TestLoader_LoadWithValidConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "test-config.yaml")

	configContent := `
app:
  name: test-app
  version: 1.0.0

kafka:
  bootstrap_servers:
    - localhost:9092
  group_id: test-group
  topics:
    - samples

buffers:
  labels:
    - pressure
    - temperature
  capacity: 1024

snapshot:
  format: csv
  interval: 30s

storage:
  type: file
  file:
    directory: /tmp/test
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	loader := NewLoader()
	config, err := loader.Load(configFile)

	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config == nil {
		t.Fatal("expected non-nil config")
	}

	// Verify loaded values
	if config.App.Name != "test-app" {
		t.Errorf("App.Name = %s, want test-app", config.App.Name)
	}
	if config.Kafka.GroupID != "test-group" {
		t.Errorf("Kafka.GroupID = %s, want test-group", config.Kafka.GroupID)
	}
	if len(config.Buffers.Labels) != 2 || config.Buffers.Labels[0] != "pressure" {
		t.Errorf("Buffers.Labels = %v, want [pressure temperature]", config.Buffers.Labels)
	}
	if config.Buffers.Capacity != 1024 {
		t.Errorf("Buffers.Capacity = %d, want 1024", config.Buffers.Capacity)
	}
	if config.Snapshot.Format != "csv" {
		t.Errorf("Snapshot.Format = %s, want csv", config.Snapshot.Format)
	}
	if config.Snapshot.Interval != 30*time.Second {
		t.Errorf("Snapshot.Interval = %v, want 30s", config.Snapshot.Interval)
	}

	// Defaults fill the rest
	if config.Kafka.Envelope != "plain" {
		t.Errorf("Kafka.Envelope = %s, want plain", config.Kafka.Envelope)
	}
	if config.DLQ.TopicSuffix != ".dlq" {
		t.Errorf("DLQ.TopicSuffix = %s, want .dlq", config.DLQ.TopicSuffix)
	}
}

func TestLoader_EnvOverride(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "test-config.yaml")
	configContent := `
kafka:
  bootstrap_servers: [localhost:9092]
  group_id: test-group
  topics: [samples]
buffers:
  labels: [pressure]
storage:
  type: file
  file:
    directory: /tmp/test
`
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	t.Setenv("BUFSTORE_LOGGING_LEVEL", "debug")

	loader := NewLoader()
	config, err := loader.Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug (env override)", config.Logging.Level)
	}
}

func TestLoader_Validate(t *testing.T) {
	valid := func() *dto.Config {
		return &dto.Config{
			Kafka: dto.KafkaConfig{
				BootstrapServers: []string{"localhost:9092"},
				GroupID:          "test-group",
				Topics:           []string{"samples"},
				Envelope:         "plain",
			},
			Buffers: dto.BuffersConfig{
				Labels: []string{"pressure"},
			},
			Snapshot: dto.SnapshotConfig{
				Format:    "json",
				Delimiter: ",",
			},
			Storage: dto.StorageConfig{
				Type: "file",
				File: dto.FileConfig{Directory: "/tmp/test"},
			},
			Server: dto.ServerConfig{
				HealthPort:  8081,
				MetricsPort: 9090,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*dto.Config)
		wantErr bool
	}{
		{
			name:    "valid file storage config",
			mutate:  func(c *dto.Config) {},
			wantErr: false,
		},
		{
			name:    "missing bootstrap servers",
			mutate:  func(c *dto.Config) { c.Kafka.BootstrapServers = nil },
			wantErr: true,
		},
		{
			name:    "missing topics",
			mutate:  func(c *dto.Config) { c.Kafka.Topics = nil },
			wantErr: true,
		},
		{
			name:    "missing group id",
			mutate:  func(c *dto.Config) { c.Kafka.GroupID = "" },
			wantErr: true,
		},
		{
			name:    "unsupported envelope mode",
			mutate:  func(c *dto.Config) { c.Kafka.Envelope = "protobuf" },
			wantErr: true,
		},
		{
			name:    "missing buffer labels",
			mutate:  func(c *dto.Config) { c.Buffers.Labels = nil },
			wantErr: true,
		},
		{
			name:    "negative buffer capacity",
			mutate:  func(c *dto.Config) { c.Buffers.Capacity = -1 },
			wantErr: true,
		},
		{
			name:    "unsupported snapshot format",
			mutate:  func(c *dto.Config) { c.Snapshot.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "multi-character delimiter",
			mutate:  func(c *dto.Config) { c.Snapshot.Delimiter = ";;" },
			wantErr: true,
		},
		{
			name: "s3 storage missing bucket",
			mutate: func(c *dto.Config) {
				c.Storage.Type = "s3"
				c.Storage.S3 = dto.S3Config{Region: "us-east-1"}
			},
			wantErr: true,
		},
		{
			name: "s3 storage complete",
			mutate: func(c *dto.Config) {
				c.Storage.Type = "s3"
				c.Storage.S3 = dto.S3Config{Bucket: "snapshots", Region: "us-east-1"}
			},
			wantErr: false,
		},
		{
			name: "azure storage missing account name",
			mutate: func(c *dto.Config) {
				c.Storage.Type = "azure"
				c.Storage.Azure = dto.AzureConfig{Container: "snapshots"}
			},
			wantErr: true,
		},
		{
			name: "gcs storage missing bucket",
			mutate: func(c *dto.Config) {
				c.Storage.Type = "gcs"
				c.Storage.GCS = dto.GCSConfig{}
			},
			wantErr: true,
		},
		{
			name: "webdav storage missing url",
			mutate: func(c *dto.Config) {
				c.Storage.Type = "webdav"
				c.Storage.WebDAV = dto.WebDAVConfig{}
			},
			wantErr: true,
		},
		{
			name:    "unsupported storage type",
			mutate:  func(c *dto.Config) { c.Storage.Type = "tape" },
			wantErr: true,
		},
		{
			name:    "invalid metrics port",
			mutate:  func(c *dto.Config) { c.Server.MetricsPort = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid health port",
			mutate:  func(c *dto.Config) { c.Server.HealthPort = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)

			loader := NewLoader()
			err := loader.Validate(config)

			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_setDefaults(t *testing.T) {
	loader := NewLoader()
	loader.setDefaults()

	// Verify some key defaults are set
	if loader.v.GetString("app.name") != "bufstore" {
		t.Error("default app.name not set correctly")
	}
	if loader.v.GetString("storage.type") != "file" {
		t.Error("default storage.type not set correctly")
	}
	if loader.v.GetString("snapshot.format") != "json" {
		t.Error("default snapshot.format not set correctly")
	}
	if loader.v.GetString("kafka.envelope") != "plain" {
		t.Error("default kafka.envelope not set correctly")
	}
}
