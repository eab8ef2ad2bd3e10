package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/framerelay/internal/shared/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, 500*time.Millisecond, cfg.Relay.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Relay.WaitTimeout)

	assert.Equal(t, "/apex/LC_APIPage", cfg.Lookup.PagePath)
	assert.Equal(t, 3, cfg.Lookup.Retries)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "127.0.0.1",
		"RELAY_POLL_INTERVAL": "250ms",
		"RELAY_WAIT_TIMEOUT":  "3s",
		"LOOKUP_URL":          "http://lookup.internal/domain",
		"TARGET_URL":          "https://vf.example.com",
		"FRAME_PAGE_PATH":     "/apex/Bridge",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_ENABLED":  "false",
		"CORS_ORIGINS":        "https://a.example.com,https://b.example.com",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, 250*time.Millisecond, cfg.Relay.PollInterval)
	assert.Equal(t, 3*time.Second, cfg.Relay.WaitTimeout)
	assert.Equal(t, "http://lookup.internal/domain", cfg.Lookup.URL)
	assert.Equal(t, "https://vf.example.com", cfg.Lookup.TargetURL)
	assert.Equal(t, "/apex/Bridge", cfg.Lookup.PagePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.Origins)
}

func TestLoadOrDefaultOnBadValue(t *testing.T) {
	t.Setenv("RELAY_WAIT_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 10*time.Second, cfg.Relay.WaitTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero poll", mutate: func(c *Config) { c.Relay.PollInterval = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Relay.WaitTimeout = -time.Second }, wantErr: true},
		{name: "poll above timeout", mutate: func(c *Config) { c.Relay.PollInterval = time.Minute }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.Lookup.Retries = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestLoadRequestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	content := `
rest:
  method: post
  headers:
    Content-Type: application/json
    Sforce-Query-Options: batchSize=200
fetch:
  options:
    credentials: include
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	defaults, err := LoadRequestDefaults(path)
	require.NoError(t, err)

	rest := defaults[types.KindREST]
	assert.Equal(t, "post", rest.Method)
	assert.Equal(t, "batchSize=200", rest.Headers["Sforce-Query-Options"])
	assert.Equal(t, "include", defaults[types.KindFetch].Options["credentials"])
}

func TestParseRequestDefaultsRejectsUnknownKind(t *testing.T) {
	_, err := ParseRequestDefaults([]byte("soap:\n  method: post\n"))
	assert.Error(t, err)

	_, err = LoadRequestDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
