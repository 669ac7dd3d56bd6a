package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// MailConfig holds the IMAP settings for the inbox being scanned.
type MailConfig struct {
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`

	// Mailbox is the folder searched for messages (usually INBOX).
	Mailbox string `mapstructure:"mailbox" yaml:"mailbox"`

	// MaxResults caps how many of the most recent matches are fetched
	// per search.
	MaxResults int `mapstructure:"max_results" yaml:"max_results"`
}

// CalendarConfig selects and configures the calendar backend that
// approved events are written to.
type CalendarConfig struct {
	// Provider is "caldav" or "google".
	Provider string `mapstructure:"provider" yaml:"provider"`

	CalDAVURL      string `mapstructure:"caldav_url" yaml:"caldav_url"`
	CalDAVUsername string `mapstructure:"caldav_username" yaml:"caldav_username"`
	CalendarPath   string `mapstructure:"calendar_path" yaml:"calendar_path"`

	GoogleCalendarID   string `mapstructure:"google_calendar_id" yaml:"google_calendar_id"`
	GoogleClientID     string `mapstructure:"google_client_id" yaml:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret" yaml:"google_client_secret"`

	// DefaultTimezone is the IANA zone used when an event carries no
	// recognised timezone abbreviation.
	DefaultTimezone string `mapstructure:"default_timezone" yaml:"default_timezone"`
}

// AIConfig holds settings for the model-backed extractor.
type AIConfig struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	Provider          string `mapstructure:"provider" yaml:"provider"`
	Model             string `mapstructure:"model" yaml:"model"`
	MaxTokens         int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSec        int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
}

// ScanConfig controls batch and scheduled inbox scans.
type ScanConfig struct {
	// Schedule is a cron spec for watch mode (e.g., "@every 15m").
	Schedule      string `mapstructure:"schedule" yaml:"schedule"`
	LookbackHours int    `mapstructure:"lookback_hours" yaml:"lookback_hours"`
	Concurrency   int    `mapstructure:"concurrency" yaml:"concurrency"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint in watch mode.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	DatabasePath string         `mapstructure:"database_path" yaml:"database_path"`
	Mail         MailConfig     `mapstructure:"mail" yaml:"mail"`
	Calendar     CalendarConfig `mapstructure:"calendar" yaml:"calendar"`
	AI           AIConfig       `mapstructure:"ai" yaml:"ai"`
	Scan         ScanConfig     `mapstructure:"scan" yaml:"scan"`
	Log          LogConfig      `mapstructure:"log" yaml:"log"`
	Metrics      MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`

	// MonitoredAddresses seeds the monitored address set on first run.
	MonitoredAddresses []string `mapstructure:"monitored_addresses" yaml:"monitored_addresses"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/agendify/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "agendify", "config.yaml")
}

// DefaultDatabasePath returns ~/.config/agendify/agendify.db.
func DefaultDatabasePath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "agendify.db")
}

var configDefaults = map[string]any{
	"database_path":                 DefaultDatabasePath(),
	"mail.imap_port":                "993",
	"mail.imap_host":                "",
	"mail.username":                 "",
	"mail.tls":                      true,
	"mail.mailbox":                  "INBOX",
	"mail.max_results":              100,
	"calendar.provider":             "caldav",
	"calendar.caldav_url":           "",
	"calendar.caldav_username":      "",
	"calendar.calendar_path":        "",
	"calendar.google_client_id":     "",
	"calendar.google_client_secret": "",
	"calendar.google_calendar_id":   "primary",
	"calendar.default_timezone":     "America/New_York",
	"ai.enabled":                    false,
	"ai.model":                      "",
	"ai.base_url":                   "",
	"ai.provider":                   "anthropic",
	"ai.max_tokens":                 500,
	"ai.timeout_sec":                30,
	"ai.requests_per_minute":        0,
	"scan.schedule":                 "@every 15m",
	"scan.lookback_hours":           24,
	"scan.concurrency":              4,
	"log.level":                     "info",
	"log.format":                    "console",
	"metrics.addr":                  "",
}

// defaultAppConfig returns the configuration used when no file exists.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		DatabasePath: DefaultDatabasePath(),
		Mail: MailConfig{
			IMAPPort:   "993",
			TLS:        true,
			Mailbox:    "INBOX",
			MaxResults: 100,
		},
		Calendar: CalendarConfig{
			Provider:         "caldav",
			GoogleCalendarID: "primary",
			DefaultTimezone:  "America/New_York",
		},
		AI: AIConfig{
			Provider:   "anthropic",
			MaxTokens:  500,
			TimeoutSec: 30,
		},
		Scan: ScanConfig{
			Schedule:      "@every 15m",
			LookbackHours: 24,
			Concurrency:   4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden by AGENDIFY_* environment variables
// (e.g., AGENDIFY_MAIL_USERNAME). If the file does not exist, defaults
// are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("agendify")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Scan.Concurrency < 1 {
		cfg.Scan.Concurrency = 1
	}
	if cfg.Scan.LookbackHours <= 0 {
		cfg.Scan.LookbackHours = 24
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database_path", cfg.DatabasePath)
	v.Set("mail", cfg.Mail)
	v.Set("calendar", cfg.Calendar)
	v.Set("ai", cfg.AI)
	v.Set("scan", cfg.Scan)
	v.Set("log", cfg.Log)
	v.Set("metrics", cfg.Metrics)
	v.Set("monitored_addresses", cfg.MonitoredAddresses)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
