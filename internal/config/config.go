// Package config loads client configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

// APIConfig configures the request gateway.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:4000/api/v1".
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds every request. Zero means the default.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// StorageConfig configures local persistence.
type StorageConfig struct {
	// Dir holds the sealed session files. Defaults to ~/.committee.
	Dir string `yaml:"dir"`
}

// Timeout returns the configured request timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:4000/api/v1",
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Storage: StorageConfig{
			Dir: defaultStorageDir(),
		},
	}
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaultStorageDir()
	}
	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultStorageDir(), "config.yaml")
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COMMITTEE_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("COMMITTEE_API_TIMEOUT"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.API.TimeoutSeconds = seconds
		}
	}
	if v := os.Getenv("COMMITTEE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("COMMITTEE_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".committee"
	}
	return filepath.Join(home, ".committee")
}
