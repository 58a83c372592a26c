package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for twharvest
type Config struct {
	// API endpoint and credentials
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Pagination and arbitration behaviour
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Persisted user list
	Users UsersConfig `yaml:"users" json:"users"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds API-specific configuration
type TwitterConfig struct {
	BaseURL        string            `yaml:"base_url" json:"base_url"`
	AuthMode       string            `yaml:"auth_mode" json:"auth_mode"`
	Credentials    CredentialsConfig `yaml:"credentials" json:"credentials"`
	RequestTimeout time.Duration     `yaml:"request_timeout" json:"request_timeout"`
	MaxAttempts    int               `yaml:"max_attempts" json:"max_attempts"`
	RetryDelay     time.Duration     `yaml:"retry_delay" json:"retry_delay"`
	RetryStatuses  []int             `yaml:"retry_statuses" json:"retry_statuses"`
}

// CredentialsConfig selects where the credential pool is loaded from
type CredentialsConfig struct {
	Source        string `yaml:"source" json:"source"`
	File          string `yaml:"file" json:"file"`
	Profile       string `yaml:"profile" json:"profile"`
	EncryptedFile string `yaml:"encrypted_file" json:"encrypted_file"`
}

// FetchConfig holds page sizes and rate-limit arbitration settings
type FetchConfig struct {
	TimelinePageSize     int    `yaml:"timeline_page_size" json:"timeline_page_size"`
	FriendsPageSize      int    `yaml:"friends_page_size" json:"friends_page_size"`
	SearchPageSize       int    `yaml:"search_page_size" json:"search_page_size"`
	IncludeRetweets      bool   `yaml:"include_retweets" json:"include_retweets"`
	Language             string `yaml:"language" json:"language"`
	MaxConsecutiveErrors int    `yaml:"max_consecutive_errors" json:"max_consecutive_errors"`
	// SeparateRateLimitBudget gives rate-limit errors their own consecutive
	// failure counter. Off by default: both kinds share one budget. The
	// counters are consecutive between successful pages, not between errors
	// of the same kind.
	SeparateRateLimitBudget bool          `yaml:"separate_rate_limit_budget" json:"separate_rate_limit_budget"`
	SafetyMargin            time.Duration `yaml:"safety_margin" json:"safety_margin"`
	StatusCallsPerWindow    int           `yaml:"status_calls_per_window" json:"status_calls_per_window"`
	StatusWindow            time.Duration `yaml:"status_window" json:"status_window"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// UsersConfig holds the location of the persisted user list
type UsersConfig struct {
	File string `yaml:"file" json:"file"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnRateLimit      bool   `yaml:"on_rate_limit" json:"on_rate_limit"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// MetricsConfig controls the Prometheus listener
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL:  "https://api.twitter.com/1.1",
			AuthMode: "user",
			Credentials: CredentialsConfig{
				Source:  "file",
				File:    "twitter_credentials.csv",
				Profile: "default",
			},
			RequestTimeout: 30 * time.Second,
			MaxAttempts:    3,
			RetryDelay:     5 * time.Second,
			RetryStatuses:  []int{401, 404, 500, 503},
		},
		Fetch: FetchConfig{
			TimelinePageSize:        200,
			FriendsPageSize:         200,
			SearchPageSize:          100,
			IncludeRetweets:         true,
			Language:                "en",
			MaxConsecutiveErrors:    2,
			SeparateRateLimitBudget: false,
			SafetyMargin:            5 * time.Second,
			StatusCallsPerWindow:    180,
			StatusWindow:            15 * time.Minute,
		},
		Output: OutputConfig{
			BaseDirectory: "results",
		},
		Notifications: NotificationConfig{
			Enabled:          false,
			OnComplete:       true,
			OnRateLimit:      true,
			NotificationType: "terminal",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv("TWHARVEST_BASE_URL"); v != "" {
		c.Twitter.BaseURL = v
	}
	if v := os.Getenv("TWHARVEST_AUTH_MODE"); v != "" {
		c.Twitter.AuthMode = v
	}
	if v := os.Getenv("TWHARVEST_CREDENTIALS_SOURCE"); v != "" {
		c.Twitter.Credentials.Source = v
	}
	if v := os.Getenv("TWHARVEST_CREDENTIALS_FILE"); v != "" {
		c.Twitter.Credentials.File = v
	}
	if v := os.Getenv("TWHARVEST_PROFILE"); v != "" {
		c.Twitter.Credentials.Profile = v
	}

	if v := os.Getenv("TWHARVEST_MAX_CONSECUTIVE_ERRORS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TWHARVEST_MAX_CONSECUTIVE_ERRORS: %w", err))
		} else {
			c.Fetch.MaxConsecutiveErrors = n
		}
	}
	if v := os.Getenv("TWHARVEST_SEPARATE_RATE_LIMIT_BUDGET"); v != "" {
		c.Fetch.SeparateRateLimitBudget = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("TWHARVEST_SAFETY_MARGIN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TWHARVEST_SAFETY_MARGIN: %w", err))
		} else {
			c.Fetch.SafetyMargin = d
		}
	}

	if v := os.Getenv("TWHARVEST_OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv("TWHARVEST_USERS_FILE"); v != "" {
		c.Users.File = v
	}
	if v := os.Getenv("TWHARVEST_NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("TWHARVEST_METRICS_ADDR"); v != "" {
		c.Metrics.Enabled = true
		c.Metrics.Address = v
	}
	if v := os.Getenv("TWHARVEST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TWHARVEST_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"twharvest.yaml",
		".twharvest.yaml",
		filepath.Join(home, ".config", "twharvest", "config.yaml"),
		"/etc/twharvest/config.yaml",
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	switch c.Twitter.AuthMode {
	case "user", "app":
	default:
		errs = append(errs, fmt.Errorf("invalid auth mode %q (want user or app)", c.Twitter.AuthMode))
	}
	switch c.Twitter.Credentials.Source {
	case "file":
		if c.Twitter.Credentials.File == "" {
			errs = append(errs, errors.New("credentials file is required for the file source"))
		}
	case "keyring":
		if c.Twitter.Credentials.Profile == "" {
			errs = append(errs, errors.New("credentials profile is required for the keyring source"))
		}
	case "encrypted", "env":
	default:
		errs = append(errs, fmt.Errorf("invalid credentials source %q", c.Twitter.Credentials.Source))
	}
	if c.Twitter.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}
	if c.Twitter.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Fetch.TimelinePageSize <= 0 || c.Fetch.FriendsPageSize <= 0 || c.Fetch.SearchPageSize <= 0 {
		errs = append(errs, errors.New("page sizes must be positive"))
	}
	if c.Fetch.MaxConsecutiveErrors < 1 {
		errs = append(errs, errors.New("max consecutive errors must be at least 1"))
	}
	if c.Fetch.SafetyMargin < 0 {
		errs = append(errs, errors.New("safety margin cannot be negative"))
	}
	if c.Fetch.StatusCallsPerWindow <= 0 || c.Fetch.StatusWindow <= 0 {
		errs = append(errs, errors.New("rate limit status pacing must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		errs = append(errs, errors.New("metrics address is required when metrics are enabled"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Keys are cobra flag names; zero values are ignored.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["credentials"].(string); ok && v != "" {
		c.Twitter.Credentials.Source = "file"
		c.Twitter.Credentials.File = v
	}
	if v, ok := flags["source"].(string); ok && v != "" {
		c.Twitter.Credentials.Source = v
	}
	if v, ok := flags["profile"].(string); ok && v != "" {
		c.Twitter.Credentials.Profile = v
	}
	if v, ok := flags["auth-mode"].(string); ok && v != "" {
		c.Twitter.AuthMode = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["metrics-addr"].(string); ok && v != "" {
		c.Metrics.Enabled = true
		c.Metrics.Address = v
	}
	if v, ok := flags["separate-budgets"].(bool); ok && v {
		c.Fetch.SeparateRateLimitBudget = true
	}
	if v, ok := flags["notify"].(bool); ok && v {
		c.Notifications.Enabled = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twharvest.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
