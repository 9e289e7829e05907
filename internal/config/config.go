// Package config handles reading and writing .parley/config.yaml plus
// environment overrides for the service endpoint and token.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .parley/config.yaml. It is read
// once at client construction and treated as immutable afterwards.
type Config struct {
	Version    int              `yaml:"version"`
	API        APIConfig        `yaml:"api"`
	Capability CapabilityConfig `yaml:"capability"`
}

// APIConfig describes how to reach the agent service.
type APIConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Token         string `yaml:"token,omitempty"`
	ProbeTimeout  int    `yaml:"probe_timeout"`  // seconds
	StatusTimeout int    `yaml:"status_timeout"` // seconds
	QueryTimeout  int    `yaml:"query_timeout"`  // seconds
}

// CapabilityConfig controls the capability cache.
type CapabilityConfig struct {
	TTL int `yaml:"ttl"` // seconds
}

// Environment variable overrides, applied after the file is read.
const (
	EnvEndpoint = "PARLEY_API_URL"
	EnvToken    = "PARLEY_API_TOKEN"
)

const configDir = ".parley"
const configFile = "config.yaml"

// ReadConfig reads .parley/config.yaml from the given directory.
// dir is the working directory root (not .parley/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .parley/config.yaml in the given directory.
// Creates the .parley/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			Endpoint:      "http://localhost:8000",
			ProbeTimeout:  5,
			StatusTimeout: 10,
			QueryTimeout:  180,
		},
		Capability: CapabilityConfig{
			TTL: 60,
		},
	}
}

// ApplyEnv loads a .env file from dir if one exists and overrides the
// endpoint and token from the environment. An absent .env file is not an
// error.
func ApplyEnv(cfg *Config, dir string) {
	// Best-effort: a missing .env just means plain environment lookup.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.API.Endpoint = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.API.Token = v
	}
}

// Load reads the config for dir, falling back to defaults when no file
// exists, and applies environment overrides.
func Load(dir string) *Config {
	cfg, err := ReadConfig(dir)
	if err != nil {
		cfg = DefaultConfig()
	}
	ApplyEnv(cfg, dir)
	return cfg
}
