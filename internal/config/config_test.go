package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "marketplace.db", cfg.DBDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, int64(8<<20), cfg.ImportMaxBytes)
	assert.False(t, cfg.SeedDemo)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := inTempDir(t)
	yml := "port: \"9090\"\nlog_level: debug\nimport_timeout: 3s\nseed_demo: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0o644))

	t.Setenv("MARKET_LOG_LEVEL", "warn")
	t.Setenv("MARKET_DB_DSN", ":memory:")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel, "env overrides file")
	assert.Equal(t, ":memory:", cfg.DBDSN)
	assert.Equal(t, 3*time.Second, cfg.ImportTimeout)
	assert.True(t, cfg.SeedDemo)
}

func TestLoad_BrokenFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: [unterminated"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}
