package codec

import (
	"fmt"

	"github.com/jittakal/bufstore/pkg/codec"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Factory creates codecs based on format and configuration.
type Factory struct {
	format      sample.Format
	compression string
	comma       rune
}

// NewFactory creates a new codec factory. The comma applies to the CSV
// codec only; a zero value means the default comma delimiter.
func NewFactory(format sample.Format, compression string, comma rune) *Factory {
	return &Factory{
		format:      format,
		compression: compression,
		comma:       comma,
	}
}

// Create creates a codec based on the configured format.
func (f *Factory) Create() (codec.Codec, error) {
	switch f.format {
	case sample.FormatJSON:
		return NewJSONCodec(), nil
	case sample.FormatCSV:
		return NewCSVCodec(f.comma), nil
	case sample.FormatYAML:
		return NewYAMLCodec(), nil
	case sample.FormatMsgPack:
		return NewMsgPackCodec(), nil
	case sample.FormatAvro:
		return NewAvroCodec(f.compression)
	case sample.FormatParquet:
		return NewParquetCodec(f.compression), nil
	default:
		return nil, fmt.Errorf("unsupported file format: %s", f.format)
	}
}

// SupportedFormats returns a list of supported file formats.
func SupportedFormats() []sample.Format {
	return []sample.Format{
		sample.FormatJSON,
		sample.FormatCSV,
		sample.FormatYAML,
		sample.FormatMsgPack,
		sample.FormatAvro,
		sample.FormatParquet,
	}
}

// SupportedCompressions returns supported compression codecs for a given format.
func SupportedCompressions(format sample.Format) []string {
	switch format {
	case sample.FormatParquet:
		return []string{"uncompressed", "snappy", "gzip", "lz4", "zstd"}
	case sample.FormatAvro:
		return []string{"uncompressed", "gzip"}
	default:
		return []string{}
	}
}

// DefaultCompression returns the default compression for a format.
func DefaultCompression(format sample.Format) string {
	switch format {
	case sample.FormatParquet:
		return "snappy"
	case sample.FormatAvro:
		return "gzip"
	default:
		return "uncompressed"
	}
}
