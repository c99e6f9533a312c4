package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DefaultPort         = 9091
	DefaultMetricsPath  = "/metrics"
	DefaultFileInterval = 15 * time.Second
	DefaultEnvInterval  = 10 * time.Second
)

// Load reads configuration from a YAML (or JSON) file and validates it.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes file-profile configuration from raw bytes.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Profile = ProfileFile
	applyLegacyKeys(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyLegacyKeys maps the legacy `endpoints` and `settings` keys onto the
// current layout. Explicit new-style keys win.
func applyLegacyKeys(cfg *AppConfig) {
	if len(cfg.Endpoints) > 0 && cfg.Networks == nil {
		cfg.Networks = make(map[string]NetworkConfig, len(cfg.Endpoints))
	}
	for name, nc := range cfg.Endpoints {
		if _, ok := cfg.Networks[name]; !ok {
			cfg.Networks[name] = nc
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = strings.ToLower(cfg.Settings.LogLevel)
	}
	if cfg.Poller.Interval == 0 {
		cfg.Poller.Interval = cfg.Settings.PollTimer
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = cfg.Settings.Port
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = DefaultMetricsPath
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 5 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Poller.Interval == 0 {
		if cfg.Profile == ProfileEnv {
			cfg.Poller.Interval = DefaultEnvInterval
		} else {
			cfg.Poller.Interval = DefaultFileInterval
		}
	}
	if cfg.Poller.Concurrency == 0 {
		cfg.Poller.Concurrency = 1
	}
}
