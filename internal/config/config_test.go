package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.API.Endpoint = "http://agent.internal:9000"
	cfg.API.Token = "abc123"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.API.Endpoint != "http://agent.internal:9000" {
		t.Errorf("Endpoint: got %q", loaded.API.Endpoint)
	}
	if loaded.API.Token != "abc123" {
		t.Errorf("Token: got %q", loaded.API.Token)
	}
	if loaded.Capability.TTL != 60 {
		t.Errorf("TTL: got %d, want 60", loaded.Capability.TTL)
	}
}

func TestDefaultConfigTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.ProbeTimeout != 5 {
		t.Errorf("ProbeTimeout: got %d, want 5", cfg.API.ProbeTimeout)
	}
	if cfg.API.StatusTimeout != 10 {
		t.Errorf("StatusTimeout: got %d, want 10", cfg.API.StatusTimeout)
	}
	if cfg.API.QueryTimeout != 180 {
		t.Errorf("QueryTimeout: got %d, want 180", cfg.API.QueryTimeout)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvEndpoint, "http://override:8001")
	t.Setenv(EnvToken, "env-token")

	cfg := DefaultConfig()
	ApplyEnv(cfg, t.TempDir())

	if cfg.API.Endpoint != "http://override:8001" {
		t.Errorf("Endpoint: got %q", cfg.API.Endpoint)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("Token: got %q", cfg.API.Token)
	}
}

func TestApplyEnvReadsDotEnvFile(t *testing.T) {
	// t.Setenv for restore-on-cleanup, then unset so the .env value wins.
	t.Setenv(EnvEndpoint, "")
	os.Unsetenv(EnvEndpoint)

	tmpDir := t.TempDir()
	dotenv := EnvEndpoint + "=http://from-dotenv:8000\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(dotenv), 0644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}

	cfg := DefaultConfig()
	ApplyEnv(cfg, tmpDir)

	if cfg.API.Endpoint != "http://from-dotenv:8000" {
		t.Errorf("Endpoint: got %q, want dotenv value", cfg.API.Endpoint)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	if cfg.API.Endpoint == "" {
		t.Error("Load without a config file should produce defaults")
	}
}
