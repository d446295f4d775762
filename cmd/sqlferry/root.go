package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sqlferry",
	Short: "Sqlferry - streaming SQL-to-file export server",
	Long: `Sqlferry executes SQL statements against a configured data source and
streams the results into CSV or Parquet files over MCP.

It provides:
  - Bounded-memory streaming in record batches
  - CSV and Parquet destinations with guaranteed cleanup on failure
  - Token-cost accounting for delimited-text exports
  - Native driver fault capture and attribution`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
