package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(BackendURLEnv, "")
	t.Setenv("TOURBOOK_TEST_REDIS", "redis:6379")

	path := writeConfig(t, `
app:
  name: tourbook-test
backend:
  base_url: "https://api.example.com/"
  timeout: 3s
redis:
  address: "${TOURBOOK_TEST_REDIS}"
booking:
  guard_ttl: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tourbook-test", cfg.App.Name)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, 2*time.Minute, cfg.Booking.GuardTTL)
	assert.Equal(t, 10, cfg.Booking.SubmitRateLimit)
	assert.Equal(t, time.Minute, cfg.Booking.SubmitRateWindow)
	assert.Equal(t, 3000, cfg.Web.Port)
	assert.Equal(t, 5000, cfg.DevAPI.Port)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(BackendURLEnv, "")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "configs/experiences.yaml", cfg.DevAPI.SeedPath)
	assert.Equal(t, 15*time.Minute, cfg.Booking.GuardTTL)
	assert.Equal(t, 24*time.Hour, cfg.Database.Backup.Interval)
	assert.False(t, cfg.Database.Backup.Enabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv(BackendURLEnv, "http://backend.internal:8080")

	cfg, err := Load(writeConfig(t, "backend:\n  base_url: http://ignored:1\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://backend.internal:8080", cfg.Backend.BaseURL)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv(BackendURLEnv, "")

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("BadYAML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "backend: [unterminated"))
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := Config{}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "relative url", mutate: func(c *Config) { c.Backend.BaseURL = "/api" }, wantErr: true},
		{name: "ftp url", mutate: func(c *Config) { c.Backend.BaseURL = "ftp://host" }, wantErr: true},
		{name: "web port too large", mutate: func(c *Config) { c.Web.Port = 70000 }, wantErr: true},
		{name: "devapi port negative", mutate: func(c *Config) { c.DevAPI.Port = -1 }, wantErr: true},
		{
			name: "metrics port checked when enabled",
			mutate: func(c *Config) {
				c.Monitoring.PrometheusEnabled = true
				c.Monitoring.PrometheusPort = 0
			},
			wantErr: true,
		},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
