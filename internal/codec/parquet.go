package codec

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/jittakal/bufstore/pkg/codec"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Ensure implementation satisfies interface at compile time.
var _ codec.Codec = (*ParquetCodec)(nil)

// SnapshotRowParquet represents the Parquet schema for snapshot rows.
// Uses native Parquet types for Athena compatibility, including
// TIMESTAMP_MICROS for the capture time.
type SnapshotRowParquet struct {
	Label    string    `parquet:"label,dict"`
	Seq      int64     `parquet:"seq"`
	Kind     string    `parquet:"kind,dict"`
	Value    string    `parquet:"value"`
	Capacity int32     `parquet:"capacity"`
	TakenAt  time.Time `parquet:"taken_at,timestamp(microsecond)"`
}

// ParquetCodec implements codec.Codec for Apache Parquet columnar format.
// Supports multiple compression codecs: SNAPPY (default), GZIP, LZ4, ZSTD.
type ParquetCodec struct {
	compressionName string
}

// NewParquetCodec creates a new Parquet codec with specified compression.
func NewParquetCodec(compression string) *ParquetCodec {
	return &ParquetCodec{
		compressionName: compression,
	}
}

// compressionCodec converts string compression name to parquet WriterOption.
func compressionCodec(compression string) parquet.WriterOption {
	switch compression {
	case "snappy", "SNAPPY":
		return parquet.Compression(&parquet.Snappy)
	case "gzip", "GZIP":
		return parquet.Compression(&parquet.Gzip)
	case "lz4", "LZ4":
		return parquet.Compression(&parquet.Lz4Raw)
	case "zstd", "ZSTD":
		return parquet.Compression(&parquet.Zstd)
	case "uncompressed", "UNCOMPRESSED", "none", "NONE":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Snappy) // Default to Snappy
	}
}

// Encode writes a snapshot to a Parquet file.
func (c *ParquetCodec) Encode(filePath string, snap *sample.Snapshot) (*sample.FileStats, error) {
	rows := snap.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to encode")
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	parquetRows := make([]SnapshotRowParquet, len(rows))
	for i, row := range rows {
		parquetRows[i] = SnapshotRowParquet{
			Label:    row.Label,
			Seq:      row.Seq,
			Kind:     row.Kind,
			Value:    row.Value,
			Capacity: int32(snap.Capacity),
			TakenAt:  snap.TakenAt,
		}
	}

	schema := parquet.SchemaOf(new(SnapshotRowParquet))
	writer := parquet.NewGenericWriter[SnapshotRowParquet](
		file,
		schema,
		compressionCodec(c.compressionName),
		parquet.CreatedBy("bufstore", "1.0", "0"),
	)

	if _, err := writer.Write(parquetRows); err != nil {
		writer.Close()
		file.Close()
		return nil, fmt.Errorf("failed to write rows: %w", err)
	}

	// Flush and close writer before stat so the footer is on disk
	if err := writer.Close(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to close writer: %w", err)
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

// Format returns the file format.
func (c *ParquetCodec) Format() sample.Format {
	return sample.FormatParquet
}

// FileExtension returns the file extension.
func (c *ParquetCodec) FileExtension() string {
	return ".parquet"
}
