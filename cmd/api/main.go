/*
Coffee Quality API serves the coffee quality classifier and the
weather-based roast advisor over HTTP.

Usage:

	coffee-quality [command]

Available Commands:

	serve    Run the HTTP API (default)
	predict  Classify one sample and record it in the history
	weather  Suggest a roast for a city's current temperature
	history  Print the most recent predictions
	version  Show version information
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coffee-quality",
		Short: "Coffee quality classifier and roast advisor",
		Long: `coffee-quality classifies coffee samples (caffeine, acidity, process)
into quality classes with a trained model, suggests a roast level from a
city's current temperature and keeps a history of every prediction.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newWeatherCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
