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
	Use:   "gateway",
	Short: "Alpha Research gateway - dashboard proxy for the research backend",
	Long: `The Alpha Research gateway proxies dashboard requests to the research
backend and normalizes its error responses.

It forwards article, theme search, market data, paper, and log requests,
relaying successful responses byte for byte. Backend failures are rewritten
into a stable error envelope: missing Python dependencies become actionable
install hints, and trace IDs are carried through so failed operations can be
found in the backend logs.`,
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
