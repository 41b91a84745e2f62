// Package sample defines core sample types and interfaces for buffer ingestion.
//
// This package contains the public API for working with labeled samples,
// their CloudEvents envelope form, and buffer snapshots.
package sample

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Sample is one labeled observation routed into a buffer.
type Sample struct {
	Label string    `json:"label"`
	Value any       `json:"value"`
	At    time.Time `json:"at,omitempty"`
}

// Envelope represents a CloudEvents 1.0 event carrying a sample.
// The subject names the target buffer and the data holds the value.
// See https://github.com/cloudevents/spec/blob/v1.0/spec.md
type Envelope struct {
	// Required attributes
	ID          string `json:"id"`
	Source      string `json:"source"`
	SpecVersion string `json:"specversion"`
	Type        string `json:"type"`

	// Optional attributes
	DataContentType *string    `json:"datacontenttype,omitempty"`
	Subject         *string    `json:"subject,omitempty"`
	Time            *time.Time `json:"time,omitempty"`

	// Sample value - can be any JSON value (object, array, string, number, etc.)
	Data json.RawMessage `json:"data,omitempty"`
}

// ToSample extracts the sample an envelope carries.
// The subject becomes the label; a missing subject yields an error.
func (e *Envelope) ToSample() (*Sample, error) {
	if e.Subject == nil || *e.Subject == "" {
		return nil, fmt.Errorf("envelope %s has no subject", e.ID)
	}
	s := &Sample{Label: *e.Subject}
	if e.Time != nil {
		s.At = *e.Time
	}
	if len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, &s.Value); err != nil {
			return nil, fmt.Errorf("envelope %s has malformed data: %w", e.ID, err)
		}
	}
	return s, nil
}

// KafkaMetadata contains Kafka-specific metadata for a consumed sample.
type KafkaMetadata struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Headers   map[string]string
	Timestamp time.Time
}

// PartitionID uniquely identifies a Kafka partition.
type PartitionID struct {
	Topic     string
	Partition int32
}

// String returns a string representation of the partition ID in the format "topic-partition".
func (p PartitionID) String() string {
	return fmt.Sprintf("%s-%d", p.Topic, p.Partition)
}

// ConsumedSample represents a sample consumed from Kafka.
type ConsumedSample struct {
	Sample     *Sample
	Metadata   KafkaMetadata
	CommitFunc func() error
}

// SampleTime returns the sample's timestamp.
// It returns Sample.At if present, otherwise falls back to the Kafka message timestamp.
func (c *ConsumedSample) SampleTime() time.Time {
	if c.Sample != nil && !c.Sample.At.IsZero() {
		return c.Sample.At
	}
	// Fallback to Kafka timestamp (when message was produced)
	return c.Metadata.Timestamp
}

// Snapshot is a point-in-time capture of one buffer's contents.
type Snapshot struct {
	Label    string    `json:"label" yaml:"label" msgpack:"label"`
	Capacity int       `json:"capacity" yaml:"capacity" msgpack:"capacity"`
	TakenAt  time.Time `json:"taken_at" yaml:"taken_at" msgpack:"taken_at"`
	Values   []any     `json:"values" yaml:"values" msgpack:"values"`
}

// Row is a snapshot value flattened for columnar file formats.
// Heterogeneous values survive as a kind tag plus their canonical JSON text.
type Row struct {
	Label string // buffer label
	Seq   int64  // position within the snapshot, oldest first
	Kind  string // "number", "string", "bool", "object", "array" or "null"
	Value string // canonical JSON encoding of the value
}

// Rows flattens the snapshot into one row per buffered value, oldest first.
func (s *Snapshot) Rows() []Row {
	rows := make([]Row, len(s.Values))
	for i, v := range s.Values {
		kind, text := describeValue(v)
		rows[i] = Row{Label: s.Label, Seq: int64(i), Kind: kind, Value: text}
	}
	return rows
}

// describeValue classifies a value by its JSON encoding. Values JSON cannot
// encode (NaN, channels) degrade to their plain string form.
func describeValue(v any) (kind, text string) {
	data, err := json.Marshal(v)
	if err != nil {
		return "string", fmt.Sprint(v)
	}
	text = string(data)
	switch {
	case text == "null":
		return "null", text
	case text == "true" || text == "false":
		return "bool", text
	case strings.HasPrefix(text, `"`):
		return "string", text
	case strings.HasPrefix(text, "["):
		return "array", text
	case strings.HasPrefix(text, "{"):
		return "object", text
	default:
		return "number", text
	}
}

// FileStats contains statistics about samples written to a snapshot file.
type FileStats struct {
	RecordCount    int
	SizeBytes      int64
	FirstWriteTime time.Time
	LastWriteTime  time.Time
}

// Format represents a snapshot file format.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatYAML    Format = "yaml"
	FormatMsgPack Format = "msgpack"
	FormatAvro    Format = "avro"
	FormatParquet Format = "parquet"
)

// ParseFormat resolves a format name. It accepts the yml alias for YAML
// and is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgPack, nil
	case "avro":
		return FormatAvro, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", s)
	}
}

// Validator validates samples before they reach a buffer.
type Validator interface {
	// Validate checks if a sample is well formed.
	Validate(s *Sample) error
}
