package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/slotwatch/config"
)

// validateCmd validates a config file without contacting the service.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a slotwatch configuration file without running a check.

This command parses the YAML, expands environment variables, and validates
all fields.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  slotwatch validate -c slotwatch.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	mode := "single batch"
	switch {
	case cfg.ShowBatches:
		mode = "show batches"
	case cfg.AllBatches:
		mode = fmt.Sprintf("all batches with status %s", cfg.Status)
	case cfg.BatchCode != "":
		mode = fmt.Sprintf("batch %s", cfg.BatchCode)
	}

	auth := "none (set auth.token or auth.phone/auth.password)"
	switch {
	case cfg.Auth.Token != "":
		auth = "token"
	case cfg.Auth.Phone != "" && cfg.Auth.Password != "":
		auth = "phone/password"
	}

	email := "disabled"
	if cfg.Email.Enabled() {
		email = cfg.Email.To
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  API:      %s\n", cfg.APIBaseURL)
	fmt.Fprintf(out, "  Mode:     %s\n", mode)
	fmt.Fprintf(out, "  Monitor:  %t (every %s)\n", cfg.Monitor, cfg.Interval.Duration())
	fmt.Fprintf(out, "  Delay:    %s\n", cfg.Delay.Duration())
	fmt.Fprintf(out, "  Auth:     %s\n", auth)
	fmt.Fprintf(out, "  Email:    %s\n", email)

	return nil
}
