package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jittakal/bufstore/pkg/buffer"
)

var (
	statsInput   string
	statsLabel   string
	statsEpsilon float64
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print buffer statistics for a sample file",
	Long: `Stats loads a JSON array of values into a buffer and prints its
statistics. Numeric aggregates are omitted for non-numeric buffers.

Examples:
  bufctl stats -i samples.json
  bufctl stats -i samples.json --label temperature --epsilon 0.1
  bufctl stats -i samples.json --json | jq '.mean'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd.OutOrStdout())
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsInput, "input", "i", "", "input JSON array file")
	statsCmd.Flags().StringVar(&statsLabel, "label", "buffer", "buffer label")
	statsCmd.Flags().Float64Var(&statsEpsilon, "epsilon", 0.5, "numeric change threshold")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON (for piping)")
	_ = statsCmd.MarkFlagRequired("input")
}

// statsReport is the printable summary of one buffer.
type statsReport struct {
	Label    string   `json:"label"`
	Len      int      `json:"len"`
	Current  any      `json:"current,omitempty"`
	Previous any      `json:"previous,omitempty"`
	Min      any      `json:"min,omitempty"`
	Max      any      `json:"max,omitempty"`
	Mean     *float64 `json:"mean,omitempty"`
	Delta    *float64 `json:"delta,omitempty"`
	Unique   int      `json:"unique"`
	Changed  bool     `json:"changed"`
}

func runStats(out io.Writer) error {
	values, err := readValues(statsInput)
	if err != nil {
		return err
	}

	buf := buffer.New[any](statsLabel)
	buf.Replace(values)
	report := buildReport(buf)

	if statsJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "label:    %s\n", report.Label)
	fmt.Fprintf(out, "len:      %d\n", report.Len)
	if report.Current != nil {
		fmt.Fprintf(out, "current:  %s\n", formatValue(report.Current))
	}
	if report.Previous != nil {
		fmt.Fprintf(out, "previous: %s\n", formatValue(report.Previous))
	}
	if report.Min != nil {
		fmt.Fprintf(out, "min:      %s\n", formatValue(report.Min))
	}
	if report.Max != nil {
		fmt.Fprintf(out, "max:      %s\n", formatValue(report.Max))
	}
	if report.Mean != nil {
		fmt.Fprintf(out, "mean:     %g\n", *report.Mean)
	}
	if report.Delta != nil {
		fmt.Fprintf(out, "delta:    %g\n", *report.Delta)
	}
	fmt.Fprintf(out, "unique:   %d\n", report.Unique)
	fmt.Fprintf(out, "changed:  %t\n", report.Changed)
	return nil
}

func buildReport(buf *buffer.Buffer[any]) statsReport {
	report := statsReport{
		Label:  buf.Label(),
		Len:    buf.Len(),
		Unique: len(buf.Unique()),
	}
	if v, ok := buf.Current(); ok {
		report.Current = v
	}
	if v, ok := buf.Previous(); ok {
		report.Previous = v
	}
	if v, err := buf.Min(); err == nil {
		report.Min = v
	}
	if v, err := buf.Max(); err == nil {
		report.Max = v
	}
	if mean, err := buf.Mean(); err == nil {
		report.Mean = &mean
	}
	if delta, err := buf.Delta(); err == nil {
		report.Delta = &delta
	}
	if changed, err := buf.HasNumericDifference(statsEpsilon); err == nil {
		report.Changed = changed
	} else {
		report.Changed = buf.HasDifference()
	}
	return report
}

// formatValue renders one value on a single line.
func formatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
