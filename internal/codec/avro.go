package codec

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/linkedin/goavro/v2"

	"github.com/jittakal/bufstore/pkg/codec"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Ensure implementation satisfies interface at compile time.
var _ codec.Codec = (*AvroCodec)(nil)

// AvroCodec implements codec.Codec for Apache Avro binary format.
// It supports optional gzip compression and produces OCF (Object Container
// File) output compatible with Apache Spark and other Avro readers. Each
// buffered value becomes one row.
type AvroCodec struct {
	codec       *goavro.Codec
	compression string
}

// NewAvroCodec creates a new Avro codec with specified compression.
func NewAvroCodec(compression string) (*AvroCodec, error) {
	avroCodec, err := goavro.NewCodec(avroSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to create avro codec: %w", err)
	}

	return &AvroCodec{
		codec:       avroCodec,
		compression: compression,
	}, nil
}

// avroSchema returns the Avro schema for snapshot rows.
func avroSchema() string {
	return `{
		"type": "record",
		"name": "SnapshotRow",
		"namespace": "com.jittakal.bufstore",
		"fields": [
			{"name": "label", "type": "string"},
			{"name": "seq", "type": "long"},
			{"name": "kind", "type": "string"},
			{"name": "value", "type": "string"},
			{"name": "capacity", "type": "int"},
			{"name": "taken_at", "type": "string"}
		]
	}`
}

// Encode writes a snapshot to an Avro file.
func (c *AvroCodec) Encode(filePath string, snap *sample.Snapshot) (*sample.FileStats, error) {
	rows := snap.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to encode")
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var writer io.Writer = file
	var gzipWriter *gzip.Writer

	// Apply compression if specified
	if c.compression == "gzip" || c.compression == "GZIP" {
		gzipWriter = gzip.NewWriter(file)
		writer = gzipWriter
		defer gzipWriter.Close()
	}

	if err := c.appendRows(writer, snap, rows); err != nil {
		return nil, err
	}

	// Ensure all data is flushed
	if gzipWriter != nil {
		if err := gzipWriter.Close(); err != nil {
			return nil, fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &sample.FileStats{
		RecordCount:    len(rows),
		SizeBytes:      fileInfo.Size(),
		FirstWriteTime: time.Now(),
		LastWriteTime:  time.Now(),
	}, nil
}

// EncodeToBytes encodes a snapshot to bytes (useful for testing).
func (c *AvroCodec) EncodeToBytes(snap *sample.Snapshot) ([]byte, error) {
	rows := snap.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to encode")
	}

	var buf bytes.Buffer
	var writer io.Writer = &buf

	var gzipWriter *gzip.Writer
	if c.compression == "gzip" || c.compression == "GZIP" {
		gzipWriter = gzip.NewWriter(&buf)
		writer = gzipWriter
	}

	if err := c.appendRows(writer, snap, rows); err != nil {
		return nil, err
	}

	if gzipWriter != nil {
		if err := gzipWriter.Close(); err != nil {
			return nil, fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// appendRows writes all snapshot rows through an OCF writer.
func (c *AvroCodec) appendRows(w io.Writer, snap *sample.Snapshot, rows []sample.Row) error {
	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:     w,
		Codec: c.codec,
	})
	if err != nil {
		return fmt.Errorf("failed to create OCF writer: %w", err)
	}

	takenAt := snap.TakenAt.Format(time.RFC3339Nano)
	for _, row := range rows {
		avroMap := map[string]interface{}{
			"label":    row.Label,
			"seq":      row.Seq,
			"kind":     row.Kind,
			"value":    row.Value,
			"capacity": int32(snap.Capacity),
			"taken_at": takenAt,
		}
		if err := ocfWriter.Append([]interface{}{avroMap}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Seq, err)
		}
	}
	return nil
}

// Format returns the file format.
func (c *AvroCodec) Format() sample.Format {
	return sample.FormatAvro
}

// FileExtension returns the file extension.
func (c *AvroCodec) FileExtension() string {
	if c.compression == "gzip" || c.compression == "GZIP" {
		return ".avro.gz"
	}
	return ".avro"
}
