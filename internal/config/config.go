package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig identifies the monitored server; its values are stamped onto
// every derived event.
type ServerConfig struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// MonitorConfig holds the two source file paths and the poll cadence.
type MonitorConfig struct {
	StatusPath    string `yaml:"status_path"`
	LogPath       string `yaml:"log_path"`
	PollInterval  string `yaml:"poll_interval"`
	StatsInterval string `yaml:"stats_interval"`
	// CursorPath, if set, persists the engine cursor between restarts.
	CursorPath string `yaml:"cursor_path"`
}

// ClickHouseConfig holds the connection settings for the event store.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the settings for publishing derived events.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// SMTPConfig holds the settings for the email notifier.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// PushoverConfig holds the settings for the Pushover notifier.
type PushoverConfig struct {
	APIToken string `yaml:"api_token"`
	UserKey  string `yaml:"user_key"`
	Device   string `yaml:"device"`
	Priority int    `yaml:"priority"`
	Sound    string `yaml:"sound"`
}

// AlerterRule defines a single threshold rule over a sampled system metric.
type AlerterRule struct {
	Metric    string  `yaml:"metric"` // cpu_percent, memory_percent or disk_percent
	Threshold float64 `yaml:"threshold"`
}

// AlerterConfig holds the configuration for the system alerter.
type AlerterConfig struct {
	Enabled       bool          `yaml:"enabled"`
	CheckInterval string        `yaml:"check_interval"`
	Rules         []AlerterRule `yaml:"rules"`
}

// APIConfig holds the settings for the HTTP query server.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Pushover   PushoverConfig   `yaml:"pushover"`
	Alerter    AlerterConfig    `yaml:"alerter"`
	API        APIConfig        `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if cfg.Monitor.StatusPath == "" {
		return nil, fmt.Errorf("monitor.status_path must be set")
	}

	return &cfg, nil
}

// PollIntervalDuration parses the configured poll interval, defaulting to
// one minute.
func (m *MonitorConfig) PollIntervalDuration() (time.Duration, error) {
	if m.PollInterval == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(m.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll_interval must be a positive duration")
	}
	return d, nil
}

// StatsIntervalDuration parses the configured system stats interval,
// defaulting to five minutes.
func (m *MonitorConfig) StatsIntervalDuration() (time.Duration, error) {
	if m.StatsInterval == "" {
		return 5 * time.Minute, nil
	}
	d, err := time.ParseDuration(m.StatsInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid stats_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("stats_interval must be a positive duration")
	}
	return d, nil
}
