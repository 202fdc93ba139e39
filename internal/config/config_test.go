package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.DefaultModel)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.CheapModel)
	assert.Equal(t, 3, cfg.Anthropic.MaxRetries)
	assert.Equal(t, 20, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 45, cfg.Fetch.PreviewTimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 8000, cfg.Analyze.HTMLLimit)
	assert.Equal(t, 2, cfg.Analyze.MaxCompetitors)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
anthropic:
  key: test-key
  default_model: claude-opus-4-6
fetch:
  timeout_secs: 10
analyze:
  html_limit: 4000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.Anthropic.Key)
	assert.Equal(t, "claude-opus-4-6", cfg.Anthropic.DefaultModel)
	assert.Equal(t, 10, cfg.Fetch.TimeoutSecs)
	// Unset keys keep their defaults.
	assert.Equal(t, 45, cfg.Fetch.PreviewTimeoutSecs)
	assert.Equal(t, 4000, cfg.Analyze.HTMLLimit)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SITECOACH_ANTHROPIC_KEY", "env-key")
	t.Setenv("SITECOACH_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Anthropic.Key)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
