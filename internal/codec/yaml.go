package codec

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jittakal/bufstore/pkg/codec"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Ensure implementation satisfies interface at compile time.
var _ codec.Codec = (*YAMLCodec)(nil)

// YAMLCodec implements codec.Codec for single-document YAML snapshots.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Encode writes a snapshot to a YAML file.
func (c *YAMLCodec) Encode(filePath string, snap *sample.Snapshot) (*sample.FileStats, error) {
	data, err := yaml.Marshal(snap)
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
func (c *YAMLCodec) Format() sample.Format {
	return sample.FormatYAML
}

// FileExtension returns the file extension.
func (c *YAMLCodec) FileExtension() string {
	return ".yaml"
}
