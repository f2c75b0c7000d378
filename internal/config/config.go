// Package config loads the influx-server configuration (spec.md §4.J):
// a YAML file with defaults, created on first run if absent, overridable by
// CLI flags at the call site (flags are applied by cmd/influxd, not here).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full set of server-wide settings.
type Config struct {
	DBChoice string `yaml:"db_choice"`
	DBPath   string `yaml:"db_path"`

	InfluxPath string `yaml:"influx_path"`

	NLPServiceURL     string `yaml:"nlp_service_url"`
	NLPTimeoutSeconds int    `yaml:"nlp_timeout_seconds"`

	Translate TranslateConfig `yaml:"translate"`

	StardictPaths map[string]string `yaml:"stardict_paths"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Addr string `yaml:"addr"`
	Seed bool   `yaml:"seed"`
}

// TranslateConfig holds the credentials for both supported providers; a
// provider whose fields are empty fails at call time with an Internal error
// rather than at startup, matching spec.md §4.N.
type TranslateConfig struct {
	GoogleAccessToken string `yaml:"google_access_token,omitempty"`
	GoogleAPIURL      string `yaml:"google_api_url,omitempty"`
	DeepLAPIKey       string `yaml:"deepl_api_key,omitempty"`
	DeepLAPIURL       string `yaml:"deepl_api_url,omitempty"`
}

// RateLimitConfig parameterises the per-IP fixed-window limiter in front of
// the tokeniser/translate endpoints (spec.md §4.P).
type RateLimitConfig struct {
	RequestsPerWindow int `yaml:"requests_per_window"`
	WindowSeconds     int `yaml:"window_seconds"`
}

// Default returns the out-of-the-box configuration: in-memory db, no
// external services configured, a permissive local rate limit.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		DBChoice:          "surreal-memory",
		DBPath:            filepath.Join(homeDir, ".influx-server", "influx.db"),
		InfluxPath:        filepath.Join(homeDir, ".influx-server", "content"),
		NLPServiceURL:     "http://localhost:8090",
		NLPTimeoutSeconds: 10,
		Translate: TranslateConfig{
			GoogleAPIURL: "https://translation.googleapis.com/v3/projects/-:translateText",
			DeepLAPIURL:  "https://api-free.deepl.com/v2/translate",
		},
		StardictPaths: map[string]string{},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 60,
			WindowSeconds:     60,
		},
		Addr: ":8080",
		Seed: false,
	}
}

// Load reads configuration from path, creating it with defaults on first
// run. Any field omitted from the file keeps its Default() value.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory if needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the default config file location.
func GetConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".influx-server", "config.yaml")
}
