// Package config loads the client configuration. Precedence, lowest to
// highest: built-in defaults, the YAML config file, environment
// variables (a .env file is honored when present).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the client settings.
type Config struct {
	// ServerURL is the base URL of the task-management API.
	ServerURL string
	// StateFile is where the session (token + profile) is persisted.
	StateFile string
	// RequestTimeout bounds each API call; zero means no timeout,
	// which matches the observed default behavior.
	RequestTimeout time.Duration
	// LogFile receives structured logs; empty logs to stderr.
	LogFile string
	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string
}

// fileConfig is the YAML shape. Durations are strings ("15s") so the
// file stays human-editable.
type fileConfig struct {
	ServerURL      string `yaml:"server_url"`
	StateFile      string `yaml:"state_file"`
	RequestTimeout string `yaml:"request_timeout"`
	LogFile        string `yaml:"log_file"`
	LogLevel       string `yaml:"log_level"`
}

// Load reads the configuration, merging the file at path (if any) and
// environment overrides over the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if fc.ServerURL != "" {
			cfg.ServerURL = fc.ServerURL
		}
		if fc.StateFile != "" {
			cfg.StateFile = fc.StateFile
		}
		if fc.LogFile != "" {
			cfg.LogFile = fc.LogFile
		}
		if fc.LogLevel != "" {
			cfg.LogLevel = fc.LogLevel
		}
		if fc.RequestTimeout != "" {
			d, err := time.ParseDuration(fc.RequestTimeout)
			if err != nil {
				return nil, fmt.Errorf("parsing request_timeout: %w", err)
			}
			cfg.RequestTimeout = d
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func defaults() *Config {
	stateDir := "."
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".taskdeck")
	}
	return &Config{
		ServerURL:      "http://localhost:8080",
		StateFile:      filepath.Join(stateDir, "session.json"),
		RequestTimeout: 0,
		LogFile:        filepath.Join(stateDir, "taskdeck.log"),
		LogLevel:       "error",
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASKDECK_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("TASKDECK_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("TASKDECK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKDECK_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
}
