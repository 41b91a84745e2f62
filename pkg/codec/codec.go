// Package codec defines interfaces for encoding buffer snapshots to various file formats.
package codec

import "github.com/jittakal/bufstore/pkg/sample"

// Codec encodes snapshots to a specific file format.
type Codec interface {
	// Encode writes a snapshot to a file and returns file statistics.
	Encode(filePath string, snap *sample.Snapshot) (*sample.FileStats, error)

	// Format returns the file format this codec produces.
	Format() sample.Format

	// FileExtension returns the file extension (e.g., ".json", ".parquet").
	FileExtension() string
}
