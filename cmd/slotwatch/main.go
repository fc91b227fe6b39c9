// Package main is the entry point for the slotwatch CLI.
//
// Usage:
//
//	slotwatch check -t TOKEN -b 502          # Check one batch once
//	slotwatch check -p PHONE -w PASS -m      # Keep checking every 5 minutes
//	slotwatch check --all-batches -m         # Check every OPENING batch
//	slotwatch batches -t TOKEN               # List the current batches
//	slotwatch validate -c slotwatch.yaml     # Validate a config file
//	slotwatch version                        # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd only shows help; the work happens in subcommands.
var rootCmd = &cobra.Command{
	Use:   "slotwatch",
	Short: "Watch the HSA exam registration service for open slots",
	Long: `slotwatch checks the HSA exam registration service for exam sessions
with free seats and alerts you by email and sound when one opens up.

Quick start:
  1. Get a token from the registration site, or use your phone and password
  2. Run: slotwatch batches -t TOKEN
  3. Run: slotwatch check -t TOKEN -b 502 -m

Every flag can also be set with a SLOTWATCH_* environment variable
(for example SLOTWATCH_TOKEN or SLOTWATCH_BATCH_CODE) or in a YAML config
file passed with -c. Flags win over the environment, which wins over the file.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this slotwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "slotwatch %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
