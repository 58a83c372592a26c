package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Fetch.MaxConsecutiveErrors != 2 {
		t.Errorf("Expected default error budget to be 2, got %d", config.Fetch.MaxConsecutiveErrors)
	}

	if config.Fetch.SafetyMargin != 5*time.Second {
		t.Errorf("Expected default safety margin to be 5s, got %v", config.Fetch.SafetyMargin)
	}

	if config.Twitter.MaxAttempts != 3 {
		t.Errorf("Expected 3 transport attempts in total by default, got %d", config.Twitter.MaxAttempts)
	}

	if config.Fetch.SeparateRateLimitBudget {
		t.Error("Expected rate-limit and generic errors to share one budget by default")
	}

	if config.Twitter.Credentials.File != "twitter_credentials.csv" {
		t.Errorf("Expected default credentials file, got %s", config.Twitter.Credentials.File)
	}

	if config.Output.BaseDirectory != "results" {
		t.Errorf("Expected default output directory to be results, got %s", config.Output.BaseDirectory)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWHARVEST_AUTH_MODE", "app")
	t.Setenv("TWHARVEST_CREDENTIALS_FILE", "/tmp/creds.csv")
	t.Setenv("TWHARVEST_MAX_CONSECUTIVE_ERRORS", "4")
	t.Setenv("TWHARVEST_SEPARATE_RATE_LIMIT_BUDGET", "true")
	t.Setenv("TWHARVEST_SAFETY_MARGIN", "10s")
	t.Setenv("TWHARVEST_OUTPUT_DIR", "/tmp/out")
	t.Setenv("TWHARVEST_METRICS_ADDR", "127.0.0.1:9100")
	t.Setenv("TWHARVEST_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Twitter.AuthMode != "app" {
		t.Errorf("Expected auth mode app, got %s", config.Twitter.AuthMode)
	}
	if config.Twitter.Credentials.File != "/tmp/creds.csv" {
		t.Errorf("Expected credentials file /tmp/creds.csv, got %s", config.Twitter.Credentials.File)
	}
	if config.Fetch.MaxConsecutiveErrors != 4 {
		t.Errorf("Expected error budget 4, got %d", config.Fetch.MaxConsecutiveErrors)
	}
	if !config.Fetch.SeparateRateLimitBudget {
		t.Error("Expected separate budgets to be enabled")
	}
	if config.Fetch.SafetyMargin != 10*time.Second {
		t.Errorf("Expected safety margin 10s, got %v", config.Fetch.SafetyMargin)
	}
	if config.Output.BaseDirectory != "/tmp/out" {
		t.Errorf("Expected output dir /tmp/out, got %s", config.Output.BaseDirectory)
	}
	if !config.Metrics.Enabled || config.Metrics.Address != "127.0.0.1:9100" {
		t.Errorf("Expected metrics on 127.0.0.1:9100, got %+v", config.Metrics)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("TWHARVEST_MAX_CONSECUTIVE_ERRORS", "two")
	t.Setenv("TWHARVEST_SAFETY_MARGIN", "soon")

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err == nil {
		t.Fatal("Expected error for malformed environment values")
	}
	if !strings.Contains(err.Error(), "TWHARVEST_MAX_CONSECUTIVE_ERRORS") ||
		!strings.Contains(err.Error(), "TWHARVEST_SAFETY_MARGIN") {
		t.Errorf("Expected both variables to be reported, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `twitter:
  auth_mode: user
  credentials:
    source: keyring
    profile: research
  max_attempts: 5
fetch:
  search_page_size: 50
  max_consecutive_errors: 3
  safety_margin: 7s
output:
  base_directory: /data/harvest
logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load from file: %v", err)
	}

	if config.Twitter.Credentials.Source != "keyring" || config.Twitter.Credentials.Profile != "research" {
		t.Errorf("Expected keyring profile research, got %+v", config.Twitter.Credentials)
	}
	if config.Twitter.MaxAttempts != 5 {
		t.Errorf("Expected max attempts 5, got %d", config.Twitter.MaxAttempts)
	}
	if config.Fetch.SearchPageSize != 50 {
		t.Errorf("Expected search page size 50, got %d", config.Fetch.SearchPageSize)
	}
	if config.Fetch.MaxConsecutiveErrors != 3 {
		t.Errorf("Expected error budget 3, got %d", config.Fetch.MaxConsecutiveErrors)
	}
	if config.Fetch.SafetyMargin != 7*time.Second {
		t.Errorf("Expected safety margin 7s, got %v", config.Fetch.SafetyMargin)
	}
	// untouched keys keep their defaults
	if config.Fetch.TimelinePageSize != 200 {
		t.Errorf("Expected timeline page size default 200, got %d", config.Fetch.TimelinePageSize)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", config.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad auth mode", func(c *Config) { c.Twitter.AuthMode = "basic" }, "invalid auth mode"},
		{"bad source", func(c *Config) { c.Twitter.Credentials.Source = "vault" }, "invalid credentials source"},
		{"missing file", func(c *Config) { c.Twitter.Credentials.File = "" }, "credentials file is required"},
		{"zero budget", func(c *Config) { c.Fetch.MaxConsecutiveErrors = 0 }, "max consecutive errors"},
		{"negative margin", func(c *Config) { c.Fetch.SafetyMargin = -time.Second }, "safety margin"},
		{"page size", func(c *Config) { c.Fetch.SearchPageSize = 0 }, "page sizes"},
		{"no attempts", func(c *Config) { c.Twitter.MaxAttempts = 0 }, "max attempts"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"metrics addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Address = "" }, "metrics address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "output:\n  base_directory: from-file\nlogging:\n  level: warn\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TWHARVEST_LOG_LEVEL", "error")

	config, err := Load(configPath, map[string]interface{}{
		"output":           "from-flag",
		"separate-budgets": true,
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Output.BaseDirectory != "from-flag" {
		t.Errorf("Expected flag to win for output, got %s", config.Output.BaseDirectory)
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected env to win over file for log level, got %s", config.Logging.Level)
	}
	if !config.Fetch.SeparateRateLimitBudget {
		t.Error("Expected separate-budgets flag to be applied")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := DefaultConfig()
	config.Twitter.Credentials.Source = "encrypted"
	config.Fetch.MaxConsecutiveErrors = 5
	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Twitter.Credentials.Source != "encrypted" || loaded.Fetch.MaxConsecutiveErrors != 5 {
		t.Errorf("Round trip lost values: %+v", loaded.Fetch)
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"credentials":  "keys.csv",
		"source":       "encrypted",
		"auth-mode":    "app",
		"metrics-addr": "127.0.0.1:9100",
		"notify":       true,
		"log-level":    "",
	})

	if config.Twitter.Credentials.Source != "encrypted" {
		t.Errorf("Expected --source to override the file source, got %s", config.Twitter.Credentials.Source)
	}
	if config.Twitter.Credentials.File != "keys.csv" {
		t.Errorf("Expected credentials file keys.csv, got %s", config.Twitter.Credentials.File)
	}
	if config.Twitter.AuthMode != "app" {
		t.Errorf("Expected auth mode app, got %s", config.Twitter.AuthMode)
	}
	if !config.Metrics.Enabled || config.Metrics.Address != "127.0.0.1:9100" {
		t.Errorf("Expected metrics enabled on 127.0.0.1:9100, got %+v", config.Metrics)
	}
	if !config.Notifications.Enabled {
		t.Error("Expected notify flag to enable notifications")
	}
	if config.Logging.Level != "info" {
		t.Errorf("Expected empty log level flag to be ignored, got %s", config.Logging.Level)
	}
}
