package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

store:
  type: "memory"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default host '0.0.0.0', got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8440 {
		t.Errorf("Expected default port 8440, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Gateway.Type != "memory" {
		t.Errorf("Expected default gateway type 'memory', got %q", cfg.Gateway.Type)
	}
	if !cfg.GC.Enabled {
		t.Error("Expected gc enabled by default")
	}
	if cfg.GC.Interval != 5*time.Minute {
		t.Errorf("Expected default gc interval 5m, got %v", cfg.GC.Interval)
	}
	if cfg.GC.MaxAttempts != 10 {
		t.Errorf("Expected default gc max_attempts 10, got %d", cfg.GC.MaxAttempts)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Point the default search path at an empty directory so the user's
	// real config cannot leak into the test.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected defaults when config file is missing, got error: %v", err)
	}

	if cfg.Store.Type != "memory" {
		t.Errorf("Expected default store type 'memory', got %q", cfg.Store.Type)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level INFO, got %q", cfg.Logging.Level)
	}
}

func TestLoad_NormalizesLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "debug"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestLoad_InvalidStoreType(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  type: "postgres"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected validation error for unknown store type")
	}
}

func TestValidate_DuplicateAdmins(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Admins = []string{"a@example.com", "a@example.com"}

	if err := Validate(&cfg); err == nil {
		t.Fatal("Expected validation error for duplicate admins")
	}
}

func TestValidate_RateBurstBelowLimit(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Server.RateLimit = 100
	cfg.Server.RateBurst = 10

	if err := Validate(&cfg); err == nil {
		t.Fatal("Expected validation error for burst below limit")
	}
}

func TestWriteDefault_LoadsBack(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := WriteDefault(configPath); err != nil {
		t.Fatalf("Failed to write default config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}

	if cfg.Store.Type != "memory" {
		t.Errorf("Expected store type 'memory' in starter config, got %q", cfg.Store.Type)
	}

	// Writing over an existing file must fail
	if err := WriteDefault(configPath); err == nil {
		t.Fatal("Expected error when config file already exists")
	}
}
