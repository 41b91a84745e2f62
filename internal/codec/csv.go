package codec

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jittakal/bufstore/pkg/codec"
	"github.com/jittakal/bufstore/pkg/sample"
)

// Ensure implementation satisfies interface at compile time.
var _ codec.Codec = (*CSVCodec)(nil)

// CSVCodec implements codec.Codec for delimited snapshot files. Each
// buffered value becomes one row (label, seq, kind, value) under a header,
// so heterogeneous values stay recoverable from the kind column.
type CSVCodec struct {
	comma rune
}

// NewCSVCodec creates a new CSV codec. A zero comma means the default comma
// delimiter.
func NewCSVCodec(comma rune) *CSVCodec {
	return &CSVCodec{comma: comma}
}

// Encode writes a snapshot to a delimited file.
func (c *CSVCodec) Encode(filePath string, snap *sample.Snapshot) (*sample.FileStats, error) {
	rows := snap.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to encode")
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if c.comma != 0 {
		w.Comma = c.comma
	}

	if err := w.Write([]string{"label", "seq", "kind", "value"}); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.Label, strconv.FormatInt(row.Seq, 10), row.Kind, row.Value}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row.Seq, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush rows: %w", err)
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
func (c *CSVCodec) Format() sample.Format {
	return sample.FormatCSV
}

// FileExtension returns the file extension.
func (c *CSVCodec) FileExtension() string {
	return ".csv"
}
