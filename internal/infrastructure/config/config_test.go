package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8080
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
security:
  api_key: "device-shared-secret"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if cfg.Security.APIKey != "device-shared-secret" {
		t.Errorf("Security.APIKey = %q, want %q", cfg.Security.APIKey, "device-shared-secret")
	}

	// Defaults survive a partial file
	if cfg.Fleet.PresenceWindowSeconds != 120 {
		t.Errorf("Fleet.PresenceWindowSeconds = %d, want 120", cfg.Fleet.PresenceWindowSeconds)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
database:
  path: ""
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty database.path, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/postwatch.db"},
				API:      APIConfig{Port: 8080},
				MQTT:     MQTTConfig{QoS: 1},
				Fleet:    FleetConfig{PresenceWindowSeconds: 120},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			config: &Config{
				Database: DatabaseConfig{Path: ""},
				API:      APIConfig{Port: 8080},
				Fleet:    FleetConfig{PresenceWindowSeconds: 120},
			},
			wantErr: true,
		},
		{
			name: "invalid port low",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/postwatch.db"},
				API:      APIConfig{Port: 0},
				Fleet:    FleetConfig{PresenceWindowSeconds: 120},
			},
			wantErr: true,
		},
		{
			name: "invalid port high",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/postwatch.db"},
				API:      APIConfig{Port: 70000},
				Fleet:    FleetConfig{PresenceWindowSeconds: 120},
			},
			wantErr: true,
		},
		{
			name: "invalid QoS",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/postwatch.db"},
				API:      APIConfig{Port: 8080},
				MQTT:     MQTTConfig{QoS: 3},
				Fleet:    FleetConfig{PresenceWindowSeconds: 120},
			},
			wantErr: true,
		},
		{
			name: "mqtt enabled without broker host",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/postwatch.db"},
				API:      APIConfig{Port: 8080},
				MQTT:     MQTTConfig{Enabled: true, QoS: 1},
				Fleet:    FleetConfig{PresenceWindowSeconds: 120},
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/postwatch.db"},
				API:      APIConfig{Port: 8080},
				InfluxDB: InfluxDBConfig{Enabled: true, Bucket: "fleet"},
				Fleet:    FleetConfig{PresenceWindowSeconds: 120},
			},
			wantErr: true,
		},
		{
			name: "non-positive presence window",
			config: &Config{
				Database: DatabaseConfig{Path: "/data/postwatch.db"},
				API:      APIConfig{Port: 8080},
				Fleet:    FleetConfig{PresenceWindowSeconds: 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestConfig_GetPresenceWindow(t *testing.T) {
	cfg := &Config{Fleet: FleetConfig{PresenceWindowSeconds: 120}}

	if got := cfg.GetPresenceWindow().Seconds(); got != 120 {
		t.Errorf("GetPresenceWindow() = %v, want 120", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("POSTWATCH_DATABASE_PATH", "/custom/path.db")
	t.Setenv("POSTWATCH_API_HOST", "192.168.1.1")
	t.Setenv("POSTWATCH_API_PORT", "9090")
	t.Setenv("POSTWATCH_MQTT_HOST", "mqtt.example.com")
	t.Setenv("POSTWATCH_MQTT_USERNAME", "testuser")
	t.Setenv("POSTWATCH_MQTT_PASSWORD", "testpass")
	t.Setenv("POSTWATCH_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("POSTWATCH_API_KEY", "shared-secret")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}

	if cfg.Security.APIKey != "shared-secret" {
		t.Errorf("Security.APIKey = %q, want %q", cfg.Security.APIKey, "shared-secret")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}

	if cfg.Fleet.PresenceWindowSeconds != 120 {
		t.Errorf("defaultConfig Fleet.PresenceWindowSeconds = %d, want 120", cfg.Fleet.PresenceWindowSeconds)
	}
}
