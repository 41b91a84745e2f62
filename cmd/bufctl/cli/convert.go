package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jittakal/bufstore/internal/codec"
	"github.com/jittakal/bufstore/pkg/sample"
)

var (
	convertInput       string
	convertOutput      string
	convertFormat      string
	convertCompression string
	convertLabel       string
	convertDelimiter   string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Re-encode a sample file into another snapshot format",
	Long: `Convert reads a JSON array of values and writes it as a buffer
snapshot in the requested format.

When --format is omitted the format is derived from the output file
extension.

Examples:
  bufctl convert -i samples.json -o samples.parquet -f parquet
  bufctl convert -i samples.json -o samples.csv --delimiter ';'
  bufctl convert -i samples.json -o samples.avro --compression snappy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.OutOrStdout())
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "input JSON array file")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output snapshot file")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "output format (json, csv, yaml, msgpack, avro, parquet)")
	convertCmd.Flags().StringVar(&convertCompression, "compression", "", "compression codec (gzip, snappy, none)")
	convertCmd.Flags().StringVar(&convertLabel, "label", "buffer", "label recorded in the snapshot")
	convertCmd.Flags().StringVar(&convertDelimiter, "delimiter", "", "CSV delimiter, a single character")
	_ = convertCmd.MarkFlagRequired("input")
	_ = convertCmd.MarkFlagRequired("output")
}

func runConvert(out io.Writer) error {
	values, err := readValues(convertInput)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("%s has no values", convertInput)
	}

	formatName := convertFormat
	if formatName == "" {
		formatName = strings.TrimPrefix(filepath.Ext(convertOutput), ".")
	}
	format, err := sample.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var comma rune
	if convertDelimiter != "" {
		if utf8.RuneCountInString(convertDelimiter) != 1 {
			return fmt.Errorf("delimiter must be a single character, got %q", convertDelimiter)
		}
		comma = []rune(convertDelimiter)[0]
	}

	c, err := codec.NewFactory(format, convertCompression, comma).Create()
	if err != nil {
		return err
	}

	snap := &sample.Snapshot{
		Label:    convertLabel,
		Capacity: len(values),
		TakenAt:  time.Now().UTC(),
		Values:   values,
	}
	stats, err := c.Encode(convertOutput, snap)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", convertOutput, err)
	}

	fmt.Fprintf(out, "wrote %d values (%d bytes) to %s\n", stats.RecordCount, stats.SizeBytes, convertOutput)
	return nil
}
