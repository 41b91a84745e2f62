// Package main provides the bufstore companion CLI.
//
// Usage:
//
//	bufctl <command> [flags]
//
// Commands:
//
//	convert - re-encode a sample file into another snapshot format
//	stats   - print buffer statistics for a sample file
//	seed    - generate fake samples into a JSON file
//	feed    - publish fake samples to a Kafka topic
package main

import (
	"fmt"
	"os"

	"github.com/jittakal/bufstore/cmd/bufctl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
