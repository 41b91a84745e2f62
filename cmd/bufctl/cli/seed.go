package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"
)

var (
	seedOutput string
	seedCount  int
	seedKind   string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate fake samples into a JSON file",
	Long: `Seed writes a JSON array of fake values. The file can be loaded
by the buffer manager or re-encoded with the convert command.

Value kinds:
  float - decimals between 0 and 100
  word  - lorem words
  price - amounts with two decimals
  mixed - a rotation of floats, words, integers and booleans

Examples:
  bufctl seed -o samples.json -n 100
  bufctl seed -o samples.json -n 50 --kind price`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.OutOrStdout())
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedOutput, "output", "o", "", "output JSON file")
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 100, "number of values")
	seedCmd.Flags().StringVar(&seedKind, "kind", "mixed", "value kind (mixed, float, word, price)")
	_ = seedCmd.MarkFlagRequired("output")
}

func runSeed(out io.Writer) error {
	if seedCount <= 0 {
		return fmt.Errorf("count must be positive, got %d", seedCount)
	}
	if err := validateKind(seedKind); err != nil {
		return err
	}

	fk := faker.New()
	values := make([]any, seedCount)
	for i := range values {
		values[i] = fakeValue(fk, seedKind, i)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode values: %w", err)
	}
	if err := os.WriteFile(seedOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", seedOutput, err)
	}

	fmt.Fprintf(out, "wrote %d %s values to %s\n", len(values), seedKind, seedOutput)
	return nil
}

func validateKind(kind string) error {
	switch kind {
	case "mixed", "float", "word", "price":
		return nil
	default:
		return fmt.Errorf("unsupported kind: %s (supported: mixed, float, word, price)", kind)
	}
}

// fakeValue produces one fake value. The sequence number drives the
// rotation of the mixed kind.
func fakeValue(fk faker.Faker, kind string, seq int) any {
	switch kind {
	case "float":
		return fk.Float64(2, 0, 100)
	case "word":
		return fk.Lorem().Word()
	case "price":
		return float64(fk.IntBetween(100, 99999)) / 100
	default: // mixed
		switch seq % 4 {
		case 0:
			return fk.Float64(2, 0, 100)
		case 1:
			return fk.Lorem().Word()
		case 2:
			return fk.IntBetween(0, 1000)
		default:
			return fk.Boolean().Bool()
		}
	}
}
