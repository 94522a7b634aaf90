package chat

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the frontend settings.
type Config struct {
	BackendURL  string `yaml:"backend_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func DefaultConfig() Config {
	return Config{
		BackendURL:  "http://assistant_backend:8000",
		TimeoutSecs: 150,
	}
}

// LoadConfig reads a YAML config. An empty path or a missing file yields the
// defaults; unset fields keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultConfig().BackendURL
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = DefaultConfig().TimeoutSecs
	}
	return cfg, nil
}
