// Package config provides YAML configuration for the slotwatch binary.
//
// Every setting can also be given as a flag or a SLOTWATCH_* environment
// variable; the file is the lowest-priority source above the defaults.
//
// Example configuration:
//
//	auth:
//	  phone: "0912345678"
//	  password: ${HSA_PASSWORD}
//
//	batch_code: "502"
//	monitor: true
//	interval: 300s
//	delay: 2s
//	results_dir: ./results
//	listen: 127.0.0.1:8080
//
//	email:
//	  to: me@example.com
//	  from: alerts@example.com
//	  region: us-east-1
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/internal/hsa"
	"github.com/jpalmerr/slotwatch/internal/notify"
	"github.com/jpalmerr/slotwatch/internal/poller"
)

// minInterval is the shortest allowed monitor interval.
const minInterval = 1 * time.Second

// DefaultRequestTimeout bounds a single call to the registration service.
const DefaultRequestTimeout = 30 * time.Second

// Config is the root configuration structure.
//
// Use [Default] for a config with every default applied, or [Load] and
// [Parse] to read one from YAML.
type Config struct {
	// APIBaseURL is the registration service root. Defaults to the
	// production service.
	APIBaseURL string `yaml:"api_base_url"`

	// PortalURL is the registration site linked from emails.
	PortalURL string `yaml:"portal_url"`

	Auth AuthConfig `yaml:"auth"`

	// BatchCode selects the batch in single-batch mode. Empty picks the first
	// OPENING batch.
	BatchCode string `yaml:"batch_code"`

	// LocationID restricts checks to one location.
	LocationID string `yaml:"location_id"`

	// Status is the batch status matched in all-batches mode.
	Status string `yaml:"status"`

	AllBatches  bool `yaml:"all_batches"`
	ShowBatches bool `yaml:"show_batches"`
	Monitor     bool `yaml:"monitor"`
	Verbose     bool `yaml:"verbose"`

	// Interval is the time between monitor cycles.
	// Accepts duration strings ("5m") or a bare number of seconds.
	Interval Duration `yaml:"interval"`

	// Delay is the pause after every remote call.
	Delay Duration `yaml:"delay"`

	// RequestTimeout bounds each remote call.
	RequestTimeout Duration `yaml:"request_timeout"`

	// ResultsDir is where result log files are written. Empty disables the file.
	ResultsDir string `yaml:"results_dir"`

	// Listen enables the status server on this address, e.g. "127.0.0.1:8080".
	Listen string `yaml:"listen"`

	Email EmailConfig `yaml:"email"`
}

// AuthConfig holds the credentials for the registration service.
//
// A token is used as-is; otherwise phone and password are exchanged for one.
// Values support environment variable substitution.
type AuthConfig struct {
	Phone    string `yaml:"phone"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
}

// EmailConfig configures notification email.
type EmailConfig struct {
	// To is the recipient. Empty disables email.
	To string `yaml:"to"`

	// From must be an SES-verified sender.
	From string `yaml:"from"`

	// Region is the SES region.
	Region string `yaml:"region"`

	// Disabled turns email off even when To is set.
	Disabled bool `yaml:"disabled"`
}

// Enabled reports whether email should be sent.
func (e EmailConfig) Enabled() bool {
	return !e.Disabled && e.To != ""
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
//
// A bare integer is read as seconds, matching the command-line flags.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ParseDuration parses "90s"-style durations and bare integer seconds.
func ParseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return parsed, nil
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		APIBaseURL:     hsa.DefaultBaseURL,
		PortalURL:      notify.DefaultPortalURL,
		Status:         slotwatch.StatusOpening,
		Interval:       Duration(slotwatch.DefaultInterval),
		Delay:          Duration(poller.DefaultDelay),
		RequestTimeout: Duration(DefaultRequestTimeout),
		ResultsDir:     ".",
		Email: EmailConfig{
			Region: notify.DefaultRegion,
		},
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""

		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		if hasDefault {
			return submatches[3]
		}
		firstErr = fmt.Errorf("environment variable %q is not set", varName)
		return match
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data on top of [Default].
//
// Environment variables are expanded in the URL, auth and email fields.
// The result is validated.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expand substitutes environment variables into the fields that accept them.
func (c *Config) expand() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"api_base_url", &c.APIBaseURL},
		{"portal_url", &c.PortalURL},
		{"auth.phone", &c.Auth.Phone},
		{"auth.password", &c.Auth.Password},
		{"auth.token", &c.Auth.Token},
		{"email.to", &c.Email.To},
		{"email.from", &c.Email.From},
	}

	for _, f := range fields {
		expanded, err := expandEnvVars(*f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

// Validate checks the config for values the watcher cannot run with.
func (c *Config) Validate() error {
	if err := validateURL("api_base_url", c.APIBaseURL); err != nil {
		return err
	}
	if c.PortalURL != "" {
		if err := validateURL("portal_url", c.PortalURL); err != nil {
			return err
		}
	}

	if c.Status == "" {
		return errors.New("status cannot be empty")
	}

	if c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}
	if c.Delay.Duration() < 0 {
		return fmt.Errorf("delay cannot be negative, got %s", c.Delay.Duration())
	}
	if c.RequestTimeout.Duration() < time.Second {
		return fmt.Errorf("request_timeout must be at least 1s, got %s", c.RequestTimeout.Duration())
	}

	if c.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Listen); err != nil {
			return fmt.Errorf("listen: invalid address %q: %w", c.Listen, err)
		}
	}

	if c.Email.Enabled() && c.Email.From == "" {
		return errors.New("email.from is required when email.to is set")
	}

	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", field, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s: url must have a host", field)
	}
	return nil
}
