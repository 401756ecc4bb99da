// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

// Package config loads the client configuration from a YAML file with
// environment variable overrides.  A missing file is not an error:
// the defaults are written out so the user has something to edit.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location relative to the user's home
// directory.
const DefaultPath = ".sudoku-llm/config.yaml"

// Config is the top-level client configuration.
type Config struct {
	Oracle  OracleConfig  `yaml:"oracle"`
	Advisor AdvisorConfig `yaml:"advisor"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
}

// OracleConfig names the puzzle service.
type OracleConfig struct {
	// BaseURL is the service root, e.g. "http://localhost:8081".
	// Empty means play offline against the built-in solver.
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// Duration is a time.Duration that reads and writes YAML in the
// "90s" / "2m" form.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// AdvisorConfig selects where move proposals come from.
type AdvisorConfig struct {
	// Backend is "oracle" (the service's proposal endpoint),
	// "openai" (call the OpenAI API directly), or "builtin"
	// (the offline single-candidate scanner).
	Backend string `yaml:"backend"`

	// Model is the OpenAI chat model for the "openai" backend.
	Model string `yaml:"model"`
}

// RedisConfig names the session store.
type RedisConfig struct {
	// URL of the Redis server; empty disables persistence.
	URL string `yaml:"url"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Oracle:  OracleConfig{BaseURL: "http://localhost:8081", Timeout: Duration(90 * time.Second)},
		Advisor: AdvisorConfig{Backend: "oracle", Model: "gpt-4o-mini"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the config at path, or the default location when path is
// empty.  A missing default-location file is created with the default
// settings; a missing explicit path is an error.  Environment
// variables SUDOKU_ORACLE_URL, SUDOKU_ADVISOR, and SUDOKU_LOG_LEVEL
// override the file.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("locating home directory: %w", err)
		}
		path = filepath.Join(home, DefaultPath)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %q: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		if werr := writeDefault(path, cfg); werr != nil {
			// playing with defaults still works
			slog.Warn("couldn't write default config", "path", path, "error", werr)
		}
	default:
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv layers environment overrides on top of the file.
func applyEnv(cfg *Config) {
	if url := os.Getenv("SUDOKU_ORACLE_URL"); url != "" {
		cfg.Oracle.BaseURL = url
	}
	if backend := os.Getenv("SUDOKU_ADVISOR"); backend != "" {
		cfg.Advisor.Backend = backend
	}
	if level := os.Getenv("SUDOKU_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

// writeDefault creates the config directory and writes cfg to path.
func writeDefault(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SlogLevel maps the configured level name onto a slog level.
// Unknown names fall back to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
