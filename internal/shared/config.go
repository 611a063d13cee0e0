package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every leaf field can be overridden by a PRACTICEBOOK_* environment variable, applied by [ApplyEnv].
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	MQTT      MQTTConfig      `toml:"mqtt"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver       string `toml:"driver" env:"PRACTICEBOOK_DB_DRIVER"`
	Path         string `toml:"path" env:"PRACTICEBOOK_DB_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"PRACTICEBOOK_DB_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"PRACTICEBOOK_DB_MAX_IDLE_CONNS"`
}

// ServerConfig contains HTTP server settings.
//
// RemoteURL, when set, points clients at a running `practicebook serve` instead of the local database.
type ServerConfig struct {
	Host      string `toml:"host" env:"PRACTICEBOOK_SERVER_HOST"`
	Port      int    `toml:"port" env:"PRACTICEBOOK_SERVER_PORT"`
	RemoteURL string `toml:"remote_url" env:"PRACTICEBOOK_REMOTE_URL"`
}

// MQTTConfig contains the BPM telemetry source settings.
type MQTTConfig struct {
	Enabled          bool   `toml:"enabled" env:"PRACTICEBOOK_MQTT_ENABLED"`
	Broker           string `toml:"broker" env:"PRACTICEBOOK_MQTT_BROKER"`
	ClientID         string `toml:"client_id" env:"PRACTICEBOOK_MQTT_CLIENT_ID"`
	Topic            string `toml:"topic" env:"PRACTICEBOOK_MQTT_TOPIC"`
	QoS              int    `toml:"qos" env:"PRACTICEBOOK_MQTT_QOS"`
	KeepAliveSeconds int    `toml:"keep_alive_seconds" env:"PRACTICEBOOK_MQTT_KEEP_ALIVE"`
	Username         string `toml:"username" env:"PRACTICEBOOK_MQTT_USERNAME"`
	Password         string `toml:"password" env:"PRACTICEBOOK_MQTT_PASSWORD"`
}

// TelemetryConfig controls how live samples are persisted as logs.
type TelemetryConfig struct {
	RecordLogs bool    `toml:"record_logs" env:"PRACTICEBOOK_RECORD_LOGS"`
	LogRate    float64 `toml:"log_rate" env:"PRACTICEBOOK_LOG_RATE"`
	LogFile    string  `toml:"log_file" env:"PRACTICEBOOK_LOG_FILE"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overlays PRACTICEBOOK_* environment variables onto config.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ResolveConfig loads path when it exists (defaults otherwise) and applies the environment overlay.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
