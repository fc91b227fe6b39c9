package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	addCheckFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return fs
}

func TestResolveConfig_Defaults(t *testing.T) {
	cfg, err := resolveConfig(parseFlags(t))
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}

	if cfg.Interval.Duration() != 300*time.Second {
		t.Errorf("Interval = %v, want 300s", cfg.Interval.Duration())
	}
	if cfg.Delay.Duration() != 2*time.Second {
		t.Errorf("Delay = %v, want 2s", cfg.Delay.Duration())
	}
	if cfg.Status != "OPENING" {
		t.Errorf("Status = %q, want OPENING", cfg.Status)
	}
	if cfg.Monitor || cfg.AllBatches || cfg.ShowBatches {
		t.Error("mode flags should default to false")
	}
}

func TestResolveConfig_ShortFlags(t *testing.T) {
	cfg, err := resolveConfig(parseFlags(t,
		"-b", "502", "-l", "L1", "-i", "60", "-d", "1", "-e", "me@example.com",
		"--email-from", "alerts@example.com", "-n", "-v", "-m", "-t", "tok", "-a",
	))
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}

	if cfg.BatchCode != "502" || cfg.LocationID != "L1" {
		t.Errorf("BatchCode/LocationID = %q/%q", cfg.BatchCode, cfg.LocationID)
	}
	if cfg.Interval.Duration() != time.Minute || cfg.Delay.Duration() != time.Second {
		t.Errorf("Interval/Delay = %v/%v", cfg.Interval.Duration(), cfg.Delay.Duration())
	}
	if cfg.Email.To != "me@example.com" || !cfg.Email.Disabled || cfg.Email.Enabled() {
		t.Errorf("Email = %+v, want recipient set but disabled", cfg.Email)
	}
	if !cfg.Verbose || !cfg.Monitor || !cfg.ShowBatches || cfg.Auth.Token != "tok" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestResolveConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slotwatch.yaml")
	content := `
batch_code: "501"
status: CLOSED
interval: 60s
delay: 3s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SLOTWATCH_BATCH_CODE", "502")
	t.Setenv("SLOTWATCH_DELAY", "5")
	t.Setenv("SLOTWATCH_TOKEN", "env-token")

	cfg, err := resolveConfig(parseFlags(t, "-c", path, "-b", "503"))
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}

	// flag beats env beats file
	if cfg.BatchCode != "503" {
		t.Errorf("BatchCode = %q, want 503 from flag", cfg.BatchCode)
	}
	if cfg.Delay.Duration() != 5*time.Second {
		t.Errorf("Delay = %v, want 5s from env", cfg.Delay.Duration())
	}
	if cfg.Auth.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Auth.Token)
	}
	// unset flags keep the file's values
	if cfg.Status != "CLOSED" {
		t.Errorf("Status = %q, want CLOSED from file", cfg.Status)
	}
	if cfg.Interval.Duration() != time.Minute {
		t.Errorf("Interval = %v, want 60s from file", cfg.Interval.Duration())
	}
}

func TestResolveConfig_ConfigPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slotwatch.yaml")
	if err := os.WriteFile(path, []byte("all_batches: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SLOTWATCH_CONFIG", path)

	cfg, err := resolveConfig(parseFlags(t))
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	if !cfg.AllBatches {
		t.Error("AllBatches = false, want true from env-selected file")
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad env duration", map[string]string{"SLOTWATCH_INTERVAL": "soon"}, nil},
		{"zero interval", nil, []string{"-i", "0"}},
		{"missing config file", nil, []string{"-c", "/does/not/exist.yaml"}},
		{"email without sender", nil, []string{"-e", "me@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := resolveConfig(parseFlags(t, tt.args...)); err == nil {
				t.Error("resolveConfig() error = nil, want error")
			}
		})
	}
}
