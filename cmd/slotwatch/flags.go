package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jpalmerr/slotwatch/config"
)

// envPrefix namespaces the environment overrides: --batch-code is
// SLOTWATCH_BATCH_CODE.
const envPrefix = "SLOTWATCH"

// addCheckFlags registers the flags shared by check and batches.
func addCheckFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path to config file")
	fs.StringP("batch-code", "b", "", "check a specific batch by code (e.g. 502, 503)")
	fs.StringP("location-id", "l", "", "only check a specific location ID")
	fs.IntP("interval", "i", 300, "seconds between checks when monitoring")
	fs.IntP("delay", "d", 2, "seconds to wait after every API call")
	fs.StringP("email", "e", "", "email address to notify")
	fs.BoolP("no-email", "n", false, "disable email notifications")
	fs.BoolP("verbose", "v", false, "show detailed output, including locations without slots")
	fs.BoolP("monitor", "m", false, "keep checking every interval until interrupted")
	fs.StringP("phone", "p", "", "phone number for authentication")
	fs.StringP("password", "w", "", "password for authentication")
	fs.StringP("token", "t", "", "bearer token (skips sign-in)")
	fs.BoolP("show-batches", "a", false, "list the available batches and exit")
	fs.Bool("all-batches", false, "check every batch with the given status")
	fs.String("status", "OPENING", "batch status matched by --all-batches")
	fs.String("listen", "", "serve live status on this address (e.g. 127.0.0.1:8080)")
	fs.String("results-dir", ".", "directory for result log files (empty disables)")
	fs.String("email-from", "", "SES-verified sender address")
	fs.String("aws-region", "", "SES region (default us-east-1)")
}

// newViper binds fs and the SLOTWATCH_* environment into one lookup.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

// resolveConfig builds the effective config: defaults, then the config
// file, then environment, then flags.
func resolveConfig(fs *pflag.FlagSet) (*config.Config, error) {
	v, err := newViper(fs)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := applyOverrides(cfg, v); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyOverrides copies every flag or environment value that was
// explicitly set onto cfg. Unset flags keep the file's values.
func applyOverrides(cfg *config.Config, v *viper.Viper) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"batch-code", &cfg.BatchCode},
		{"location-id", &cfg.LocationID},
		{"email", &cfg.Email.To},
		{"email-from", &cfg.Email.From},
		{"aws-region", &cfg.Email.Region},
		{"phone", &cfg.Auth.Phone},
		{"password", &cfg.Auth.Password},
		{"token", &cfg.Auth.Token},
		{"status", &cfg.Status},
		{"listen", &cfg.Listen},
		{"results-dir", &cfg.ResultsDir},
	}
	for _, s := range strs {
		if v.IsSet(s.key) {
			*s.dst = v.GetString(s.key)
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"no-email", &cfg.Email.Disabled},
		{"verbose", &cfg.Verbose},
		{"monitor", &cfg.Monitor},
		{"show-batches", &cfg.ShowBatches},
		{"all-batches", &cfg.AllBatches},
	}
	for _, b := range bools {
		if v.IsSet(b.key) {
			*b.dst = v.GetBool(b.key)
		}
	}

	durations := []struct {
		key string
		dst *config.Duration
	}{
		{"interval", &cfg.Interval},
		{"delay", &cfg.Delay},
	}
	for _, d := range durations {
		if !v.IsSet(d.key) {
			continue
		}
		parsed, err := config.ParseDuration(v.GetString(d.key))
		if err != nil {
			return fmt.Errorf("--%s: %w", d.key, err)
		}
		*d.dst = config.Duration(parsed)
	}
	return nil
}
