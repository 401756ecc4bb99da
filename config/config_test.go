// OpenAI-Sudoku-LLM - an interactive client for a remote Sudoku oracle.
// Copyright (C) 2025 Gerald Yong.

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
oracle:
  base_url: http://oracle.example:9000
  timeout: 30s
advisor:
  backend: openai
  model: gpt-4o
redis:
  url: redis://cache.example:6379/
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://oracle.example:9000", cfg.Oracle.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout.Std())
	assert.Equal(t, "openai", cfg.Advisor.Backend)
	assert.Equal(t, "gpt-4o", cfg.Advisor.Model)
	assert.Equal(t, "redis://cache.example:6379/", cfg.Redis.URL)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("advisor:\n  backend: builtin\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "builtin", cfg.Advisor.Backend)
	assert.Equal(t, Default().Oracle.BaseURL, cfg.Oracle.BaseURL)
	assert.Equal(t, Default().Oracle.Timeout, cfg.Oracle.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))

	t.Setenv("SUDOKU_ORACLE_URL", "http://override.example:8081")
	t.Setenv("SUDOKU_ADVISOR", "builtin")
	t.Setenv("SUDOKU_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override.example:8081", cfg.Oracle.BaseURL)
	assert.Equal(t, "builtin", cfg.Advisor.Backend)
	assert.Equal(t, slog.LevelError, cfg.Log.SlogLevel())
}

func TestSlogLevelFallback(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "chatty"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{}.SlogLevel())
}
