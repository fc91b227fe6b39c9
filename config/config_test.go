package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.APIBaseURL != "https://api.hsa.edu.vn" {
		t.Errorf("APIBaseURL = %q, want default", cfg.APIBaseURL)
	}
	if cfg.Status != "OPENING" {
		t.Errorf("Status = %q, want OPENING", cfg.Status)
	}
	if cfg.Interval.Duration() != 300*time.Second {
		t.Errorf("Interval = %v, want 300s", cfg.Interval.Duration())
	}
	if cfg.Delay.Duration() != 2*time.Second {
		t.Errorf("Delay = %v, want 2s", cfg.Delay.Duration())
	}
	if cfg.Email.Region != "us-east-1" {
		t.Errorf("Email.Region = %q, want us-east-1", cfg.Email.Region)
	}
	if cfg.Email.Enabled() {
		t.Error("Email.Enabled() = true, want false without a recipient")
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
api_base_url: https://staging.example.com
portal_url: https://portal.example.com
auth:
  phone: "0912345678"
  password: secret
batch_code: "502"
location_id: "L1"
status: CLOSED
all_batches: true
monitor: true
verbose: true
interval: 2m
delay: 500ms
request_timeout: 10s
results_dir: /tmp/results
listen: 127.0.0.1:8080
email:
  to: me@example.com
  from: alerts@example.com
  region: eu-west-1
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.APIBaseURL != "https://staging.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Auth.Phone != "0912345678" || cfg.Auth.Password != "secret" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.BatchCode != "502" || cfg.LocationID != "L1" || cfg.Status != "CLOSED" {
		t.Errorf("BatchCode/LocationID/Status = %q/%q/%q", cfg.BatchCode, cfg.LocationID, cfg.Status)
	}
	if !cfg.AllBatches || !cfg.Monitor || !cfg.Verbose || cfg.ShowBatches {
		t.Errorf("flags = all:%v monitor:%v verbose:%v show:%v", cfg.AllBatches, cfg.Monitor, cfg.Verbose, cfg.ShowBatches)
	}
	if cfg.Interval.Duration() != 2*time.Minute {
		t.Errorf("Interval = %v, want 2m", cfg.Interval.Duration())
	}
	if cfg.Delay.Duration() != 500*time.Millisecond {
		t.Errorf("Delay = %v, want 500ms", cfg.Delay.Duration())
	}
	if cfg.RequestTimeout.Duration() != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout.Duration())
	}
	if cfg.ResultsDir != "/tmp/results" || cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("ResultsDir/Listen = %q/%q", cfg.ResultsDir, cfg.Listen)
	}
	if !cfg.Email.Enabled() || cfg.Email.Region != "eu-west-1" {
		t.Errorf("Email = %+v", cfg.Email)
	}
}

func TestParse_IntervalAsSeconds(t *testing.T) {
	cfg, err := Parse([]byte("interval: 120\ndelay: 0\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Interval.Duration() != 120*time.Second {
		t.Errorf("Interval = %v, want 120s", cfg.Interval.Duration())
	}
	if cfg.Delay.Duration() != 0 {
		t.Errorf("Delay = %v, want 0", cfg.Delay.Duration())
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_HSA_TOKEN", "tok-123")

	cfg, err := Parse([]byte(`
auth:
  token: ${TEST_HSA_TOKEN}
  phone: ${TEST_HSA_PHONE:-0900000000}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Auth.Token != "tok-123" {
		t.Errorf("Auth.Token = %q, want tok-123", cfg.Auth.Token)
	}
	if cfg.Auth.Phone != "0900000000" {
		t.Errorf("Auth.Phone = %q, want default", cfg.Auth.Phone)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	_, err := Parse([]byte("auth:\n  password: ${TEST_HSA_UNSET_VAR}\n"))
	if err == nil {
		t.Fatal("Parse() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "auth.password") {
		t.Errorf("error %q should name the field", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"interval too short", "interval: 500ms", "interval must be at least 1s"},
		{"zero interval", "interval: 0", "interval must be at least 1s"},
		{"negative delay", "delay: -1s", "delay cannot be negative"},
		{"request timeout too short", "request_timeout: 10ms", "request_timeout must be at least 1s"},
		{"empty status", `status: ""`, "status cannot be empty"},
		{"bad scheme", "api_base_url: ftp://example.com", "scheme must be http or https"},
		{"missing host", "api_base_url: https://", "must have a host"},
		{"bad listen", "listen: localhost", "listen: invalid address"},
		{"email without sender", "email:\n  to: me@example.com", "email.from is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_DisabledEmailNeedsNoSender(t *testing.T) {
	cfg, err := Parse([]byte("email:\n  to: me@example.com\n  disabled: true\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Email.Enabled() {
		t.Error("Email.Enabled() = true, want false")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("interval: [")); err == nil {
		t.Error("Parse() error = nil, want error")
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte("interval: soon"))
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("Parse() error = %v, want invalid duration", err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"300", 300 * time.Second, false},
		{"0", 0, false},
		{"90s", 90 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"", 0, true},
		{"five", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_EXPAND_SET", "value")
	t.Setenv("TEST_EXPAND_EMPTY", "")

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "plain", false},
		{"${TEST_EXPAND_SET}", "value", false},
		{"pre-${TEST_EXPAND_SET}-post", "pre-value-post", false},
		{"${TEST_EXPAND_EMPTY:-fallback}", "", false},
		{"${TEST_EXPAND_UNSET:-fallback}", "fallback", false},
		{"${TEST_EXPAND_UNSET:-}", "", false},
		{"${TEST_EXPAND_UNSET}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandEnvVars(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
