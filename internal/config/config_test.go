package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"POKERUB_CONFIG", "POKERUB_ENDPOINT", "POKERUB_CLIENT_TIMEOUT",
	"POKERUB_PAGE_SIZE", "POKERUB_TOTAL_COUNT", "POKERUB_PREFETCH_CONCURRENCY",
	"POKERUB_STORE_ENGINE", "POKERUB_STORE_PATH", "POKERUB_LOG_FILE",
	"POKERUB_LOG_LEVEL", "POKERUB_MOCK_PORT",
	"SURREALDB_URL", "SURREALDB_NAMESPACE", "SURREALDB_DATABASE",
	"SURREALDB_USER", "SURREALDB_PASS", "SURREALDB_AUTH_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.ClientTimeout)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 898, cfg.TotalCount)
	assert.Equal(t, "sqlite", cfg.StoreEngine)
	assert.Equal(t, "pokerub", cfg.SurrealDBNamespace)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadLayering(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
endpoint: http://localhost:8585/graphql
client_timeout: 3s
page_size: 20
store:
  engine: json
log_level: debug
mock:
  port: 9000
`)
	t.Setenv("POKERUB_PAGE_SIZE", "5")
	t.Setenv("POKERUB_STORE_PATH", "/tmp/pokerub-test.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8585/graphql", cfg.Endpoint, "from file")
	assert.Equal(t, 3*time.Second, cfg.ClientTimeout, "from file")
	assert.Equal(t, 5, cfg.PageSize, "env beats file")
	assert.Equal(t, "json", cfg.StoreEngine)
	assert.Equal(t, "/tmp/pokerub-test.json", cfg.StorePath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 9000, cfg.MockPort)
	assert.Equal(t, 898, cfg.TotalCount, "untouched default")
}

func TestLoadDefaultStorePathFollowsEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKERUB_STORE_ENGINE", "json")

	cfg, err := Load(writeFile(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "favorites.json", filepath.Base(cfg.StorePath))
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadConfigEnvVar(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKERUB_CONFIG", writeFile(t, "total_count: 151\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 151, cfg.TotalCount)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad yaml", file: "page_size: [oops"},
		{name: "bad file duration", file: "client_timeout: soon"},
		{name: "bad env duration", file: "{}", env: map[string]string{"POKERUB_CLIENT_TIMEOUT": "soon"}},
		{name: "bad env int", file: "{}", env: map[string]string{"POKERUB_PAGE_SIZE": "ten"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.file))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"page size", func(c *Config) { c.PageSize = 0 }, ErrInvalidPageSize},
		{"timeout", func(c *Config) { c.ClientTimeout = -time.Second }, ErrInvalidTimeout},
		{"total count", func(c *Config) { c.TotalCount = 0 }, ErrInvalidTotalCount},
		{"concurrency", func(c *Config) { c.PrefetchConcurrency = 0 }, ErrInvalidConcurrency},
		{"port", func(c *Config) { c.MockPort = 70000 }, ErrInvalidPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.True(t, errors.Is(cfg.Validate(), tt.want))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var console, file bytes.Buffer
	logger := SetupLoggerWithWriters(&console, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("page loaded", "page", 2)

	assert.Contains(t, console.String(), "msg=\"page loaded\"")
	assert.NotContains(t, console.String(), "hidden")
	assert.True(t, strings.HasPrefix(file.String(), "{"), "file output is JSON")
	assert.Contains(t, file.String(), `"page":2`)
}

func TestSetupLoggerFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pokerub.log")

	logger, cleanup := SetupLogger(path, nil, slog.LevelInfo)
	logger.Info("favorite added", "id", "1")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"favorite added"`)
}
