package buffer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// DefaultDelimiter separates fields in delimited exports.
const DefaultDelimiter = ','

// WriteDelimited writes one element per line to w, each line a single
// field, using comma as the field delimiter (zero means DefaultDelimiter).
// Values render through their text representation; nil renders as null.
func (b *Buffer[T]) WriteDelimited(w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	for i := range b.elems {
		if err := cw.Write([]string{formatValue(any(b.elems[i]))}); err != nil {
			return fmt.Errorf("failed to write element %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush delimited output: %w", err)
	}
	return nil
}

// ExportDelimited writes the buffer to a delimited text file at path,
// creating or truncating it. A failed write leaves the file in an
// unspecified state.
func (b *Buffer[T]) ExportDelimited(path string, comma rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := b.WriteDelimited(f, comma); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
