package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/config"
	"github.com/jpalmerr/slotwatch/internal/hsa"
	"github.com/jpalmerr/slotwatch/internal/notify"
	"github.com/jpalmerr/slotwatch/internal/poller"
	"github.com/jpalmerr/slotwatch/internal/resultlog"
	"github.com/jpalmerr/slotwatch/internal/server"
	"github.com/jpalmerr/slotwatch/internal/store"
)

// newLogger creates a JSON logger for CLI diagnostics. Domain output goes
// to the result log on stdout; this goes to stderr.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// newAlerter builds the audible alert. Tests replace it.
var newAlerter = func(logger *slog.Logger) slotwatch.Alerter {
	return notify.NewSoundAlerter(logger)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for available exam slots",
	Long: `Check the HSA registration service for exam sessions with free seats.

By default the first OPENING batch is checked once. Use -b to pick a batch,
--all-batches to check every batch with a status, and -m to keep checking
every interval until interrupted (Ctrl+C).

When a slot is found an email is sent (if -e is set) and a sound is played.
Every event is also appended to results-YYYYMMDD-HHMMSS.tmp.

Example:
  slotwatch check -t TOKEN -b 502
  slotwatch check -p 0912345678 -w secret --all-batches -m -i 120`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			return err
		}
		return runSignalAware(cmd, cfg)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addCheckFlags(checkCmd.Flags())
}

// runSignalAware runs the watcher until it finishes or SIGINT/SIGTERM arrives.
func runSignalAware(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runWatch(ctx, cfg, cmd.OutOrStdout(), newLogger(os.Stderr, cfg.Verbose))
}

// runWatch wires the client, registry, result log, notifications and
// optional status server, then runs the watcher.
func runWatch(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	client := poller.NewClient(config.BuildClientOptions(cfg)...)
	defer client.Close()

	api := hsa.New(client, cfg.APIBaseURL, logger)

	token, err := api.ResolveToken(ctx, cfg.Auth.Token, cfg.Auth.Phone, cfg.Auth.Password)
	if err != nil {
		return err
	}
	client.SetToken(token)

	resultsDir := cfg.ResultsDir
	if cfg.ShowBatches {
		resultsDir = ""
	}
	results := resultlog.New(out, resultsDir, resultlog.WithLogger(logger))
	defer func() {
		if err := results.Close(); err != nil {
			logger.Warn("failed to close result log", "error", err.Error())
		}
	}()

	results.Print("HSA Exam Slot Checker")
	results.Print(fmt.Sprintf("Using API delay: %s", cfg.Delay.Duration()))

	opts := append(config.BuildOptions(cfg),
		slotwatch.WithLogger(logger),
		slotwatch.WithResultLog(results),
		slotwatch.WithAlerter(newAlerter(logger)),
	)

	if cfg.Email.Enabled() {
		sender, err := notify.NewSESSender(ctx, cfg.Email.Region)
		if err != nil {
			// email is best-effort; keep checking without it
			logger.Warn("email disabled", "error", err.Error())
		} else {
			mailer := notify.NewMailer(sender, cfg.Email.From, []string{cfg.Email.To},
				notify.WithPortalURL(cfg.PortalURL),
				notify.WithMailerLogger(logger),
			)
			opts = append(opts, slotwatch.WithNotifier(mailer))
		}
	}

	if cfg.Listen != "" && !cfg.ShowBatches {
		st := store.NewMemoryStore()
		srv := server.NewServer(st, cfg.Listen, logger)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		results.Print(fmt.Sprintf("Live status at http://%s/api/status", srv.Addr()))
		opts = append(opts, slotwatch.WithResultCallback(st.Record))
	}

	w, err := slotwatch.New(api, opts...)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.Run(ctx); err != nil {
		return err
	}

	if !cfg.Monitor && !cfg.ShowBatches {
		printHints(results, cfg)
	}
	return nil
}

func printHints(results *resultlog.Log, cfg *config.Config) {
	results.Print("To continuously monitor, run with the -m flag")
	results.Print("To check all batches, run with --all-batches")
	results.Print(fmt.Sprintf("Adjust API delay with -d SECONDS (current: %d)", int(cfg.Delay.Duration().Seconds())))
	results.Print(fmt.Sprintf("Set monitoring interval with -i SECONDS (current: %d)", int(cfg.Interval.Duration().Seconds())))
	if path := results.Path(); path != "" {
		results.Print(fmt.Sprintf("Results saved to %s", path))
	}
	results.Print("To view all available batches, run with the -a flag")
}
