package codec

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jittakal/bufstore/pkg/codec"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Ensure implementation satisfies interface at compile time.
var _ codec.Codec = (*JSONCodec)(nil)

// JSONCodec implements codec.Codec for single-document JSON snapshots.
// The whole snapshot (label, capacity, capture time, values) is written
// as one JSON object.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode writes a snapshot to a JSON file.
func (c *JSONCodec) Encode(filePath string, snap *sample.Snapshot) (*sample.FileStats, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &sample.FileStats{
		RecordCount:    len(snap.Values),
		SizeBytes:      int64(len(data)),
		FirstWriteTime: time.Now(),
		LastWriteTime:  time.Now(),
	}, nil
}

// Format returns the file format.
func (c *JSONCodec) Format() sample.Format {
	return sample.FormatJSON
}

// FileExtension returns the file extension.
func (c *JSONCodec) FileExtension() string {
	return ".json"
}
