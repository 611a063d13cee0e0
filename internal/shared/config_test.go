package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./practice.db" {
			t.Errorf("expected database path ./practice.db, got %s", config.Database.Path)
		}
		if config.Database.Driver != "sqlite3" {
			t.Errorf("expected driver sqlite3, got %s", config.Database.Driver)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.MQTT.Topic != "esp32/midi" {
			t.Errorf("expected mqtt topic esp32/midi, got %s", config.MQTT.Topic)
		}
		if config.MQTT.QoS != 1 {
			t.Errorf("expected qos 1, got %d", config.MQTT.QoS)
		}
		if config.MQTT.KeepAliveSeconds != 5 {
			t.Errorf("expected keep alive 5, got %d", config.MQTT.KeepAliveSeconds)
		}
		if config.Telemetry.LogRate != 1.0 {
			t.Errorf("expected log rate 1.0, got %v", config.Telemetry.LogRate)
		}
	})

	t.Run("Addr", func(t *testing.T) {
		s := ServerConfig{Host: "0.0.0.0", Port: 8080}
		if got := s.Addr(); got != "0.0.0.0:8080" {
			t.Errorf("expected 0.0.0.0:8080, got %s", got)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[database]
driver = "sqlite"
path = "/custom/path.db"

[server]
port = 8080

[mqtt]
broker = "tcp://broker.local:1883"
topic = "studio/bpm"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Database.Driver != "sqlite" {
			t.Errorf("expected driver sqlite, got %s", config.Database.Driver)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.MQTT.Topic != "studio/bpm" {
			t.Errorf("expected topic studio/bpm, got %s", config.MQTT.Topic)
		}
		if config.MQTT.ClientID != "practicebook" {
			t.Errorf("expected missing keys to keep defaults, got client_id %q", config.MQTT.ClientID)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ResolveConfig Applies Env", func(t *testing.T) {
		t.Setenv("PRACTICEBOOK_DB_PATH", "/env/practice.db")
		t.Setenv("PRACTICEBOOK_MQTT_TOPIC", "env/topic")
		t.Setenv("PRACTICEBOOK_SERVER_PORT", "9999")

		config, err := ResolveConfig(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("failed to resolve config: %v", err)
		}

		if config.Database.Path != "/env/practice.db" {
			t.Errorf("expected env db path, got %s", config.Database.Path)
		}
		if config.MQTT.Topic != "env/topic" {
			t.Errorf("expected env topic, got %s", config.MQTT.Topic)
		}
		if config.Server.Port != 9999 {
			t.Errorf("expected env port 9999, got %d", config.Server.Port)
		}
		if config.MQTT.Broker != "tcp://localhost:1883" {
			t.Errorf("expected unset env to keep default broker, got %s", config.MQTT.Broker)
		}
	})

	t.Run("ResolveConfig Invalid Env", func(t *testing.T) {
		t.Setenv("PRACTICEBOOK_SERVER_PORT", "not-a-port")

		_, err := ResolveConfig(filepath.Join(t.TempDir(), "absent.toml"))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
