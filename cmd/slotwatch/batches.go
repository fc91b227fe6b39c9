package main

import (
	"github.com/spf13/cobra"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List the batches of the current exam period",
	Long: `List every batch of the active exam period with its code, status and
dates. Same as "slotwatch check --show-batches".

Example:
  slotwatch batches -t TOKEN`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			return err
		}
		cfg.ShowBatches = true
		return runSignalAware(cmd, cfg)
	},
}

func init() {
	rootCmd.AddCommand(batchesCmd)
	addCheckFlags(batchesCmd.Flags())
}
