package config

import (
	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/internal/hsa"
	"github.com/jpalmerr/slotwatch/internal/poller"
)

// BuildOptions converts the run settings into watcher options.
//
// Notifier, alerter, result log and callbacks are wired by the caller.
func BuildOptions(cfg *Config) []slotwatch.Option {
	opts := []slotwatch.Option{
		slotwatch.WithStatusFilter(cfg.Status),
		slotwatch.WithInterval(cfg.Interval.Duration()),
		slotwatch.WithAllBatches(cfg.AllBatches),
		slotwatch.WithShowBatches(cfg.ShowBatches),
		slotwatch.WithMonitor(cfg.Monitor),
		slotwatch.WithVerbose(cfg.Verbose),
		slotwatch.WithEmailDisabled(!cfg.Email.Enabled()),
	}

	if cfg.BatchCode != "" {
		opts = append(opts, slotwatch.WithBatchCode(cfg.BatchCode))
	}
	if cfg.LocationID != "" {
		opts = append(opts, slotwatch.WithLocationID(cfg.LocationID))
	}
	return opts
}

// BuildClientOptions converts the transport settings into client options.
func BuildClientOptions(cfg *Config) []poller.ClientOption {
	return []poller.ClientOption{
		poller.WithHeaders(hsa.DefaultHeaders),
		poller.WithDelay(cfg.Delay.Duration()),
		poller.WithTimeout(cfg.RequestTimeout.Duration()),
	}
}
