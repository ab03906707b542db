package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL     string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	PreferredGroup string
	LogDir         string
}

// fileConfig is the YAML shape; durations are plain seconds.
type fileConfig struct {
	APIBaseURL            string `yaml:"api_base_url"`
	PollIntervalSeconds   int    `yaml:"poll_interval_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	PreferredGroup        string `yaml:"preferred_group"`
	LogDir                string `yaml:"log_dir"`
}

// Load builds the configuration from defaults, then an optional YAML file,
// then environment overrides. path may be empty.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIBaseURL:     "http://localhost:8001/api",
		PollInterval:   5 * time.Second,
		RequestTimeout: 10 * time.Second,
		PreferredGroup: "Team zee",
		LogDir:         "logs",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
		if fc.APIBaseURL != "" {
			cfg.APIBaseURL = fc.APIBaseURL
		}
		if fc.PollIntervalSeconds > 0 {
			cfg.PollInterval = time.Duration(fc.PollIntervalSeconds) * time.Second
		}
		if fc.RequestTimeoutSeconds > 0 {
			cfg.RequestTimeout = time.Duration(fc.RequestTimeoutSeconds) * time.Second
		}
		if fc.PreferredGroup != "" {
			cfg.PreferredGroup = fc.PreferredGroup
		}
		if fc.LogDir != "" {
			cfg.LogDir = fc.LogDir
		}
	}

	if url := os.Getenv("COLLABMEET_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}

	if intervalStr := os.Getenv("COLLABMEET_POLL_INTERVAL"); intervalStr != "" {
		if seconds, err := strconv.Atoi(intervalStr); err == nil && seconds > 0 {
			cfg.PollInterval = time.Duration(seconds) * time.Second
		}
	}

	if timeoutStr := os.Getenv("COLLABMEET_REQUEST_TIMEOUT"); timeoutStr != "" {
		if seconds, err := strconv.Atoi(timeoutStr); err == nil && seconds > 0 {
			cfg.RequestTimeout = time.Duration(seconds) * time.Second
		}
	}

	if group := os.Getenv("COLLABMEET_GROUP"); group != "" {
		cfg.PreferredGroup = group
	}

	if dir := os.Getenv("COLLABMEET_LOG_DIR"); dir != "" {
		cfg.LogDir = dir
	}

	return cfg, nil
}
