// Package cli implements the bufctl commands.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel string

	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bufctl",
	Short: "Buffer store companion CLI",
	Long: `bufctl works with buffer sample files and sample topics.

Sample files are JSON arrays of values, the shape the buffer manager
imports and exports.

Examples:
  # Generate 100 fake float values
  bufctl seed -o samples.json -n 100 --kind float

  # Re-encode a sample file as Parquet
  bufctl convert -i samples.json -o samples.parquet -f parquet

  # Print buffer statistics for a sample file
  bufctl stats -i samples.json --label temperature

  # Publish fake samples to a Kafka topic
  bufctl feed --brokers localhost:9092 --topic buffer.samples -n 100
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(feedCmd)
}

// readValues loads a JSON array file into a value slice.
func readValues(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var values []any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return values, nil
}
