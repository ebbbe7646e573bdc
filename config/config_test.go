package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "SECRET_KEY", "CONFIG_FILE", "DATABASE_URL",
	"LOG_LEVEL", "LOG_FILE", "LOG_FORMAT", "SLOW_REQUEST_THRESHOLD",
}

// clearConfigEnv blanks every key Load looks at; viper treats empty
// variables as unset.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err, "Loading default config should not error")
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "it's a secret", cfg.SecretKey)
	assert.Equal(t, "postgresql:///warbler", cfg.DatabaseURL)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Log.File)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.Equal(t, 2*time.Second, cfg.SlowRequestThreshold)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearConfigEnv(t)

	envVars := map[string]string{
		"ENVIRONMENT":            "production",
		"PORT":                   "9090",
		"SECRET_KEY":             "supersecret",
		"DATABASE_URL":           "postgresql:///warbler-test",
		"LOG_LEVEL":              "warn",
		"LOG_FILE":               "/tmp/warbler.log",
		"LOG_FORMAT":             "text",
		"SLOW_REQUEST_THRESHOLD": "500ms",
	}
	for k, v := range envVars {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "supersecret", cfg.SecretKey)
	assert.Equal(t, "postgresql:///warbler-test", cfg.DatabaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/warbler.log", cfg.Log.File)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowRequestThreshold)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidValues(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("PORT", "invalid")
	_, err := Load()
	assert.Error(t, err, "Loading config with invalid PORT should error")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("CONFIG_FILE", "/nonexistent/warbler.yaml")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionNeedsSecretKey(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("ENVIRONMENT", "production")
	_, err := Load()
	assert.ErrorContains(t, err, "SECRET_KEY")

	t.Setenv("SECRET_KEY", "supersecret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestCSRFKey(t *testing.T) {
	a := &Config{SecretKey: "one"}
	b := &Config{SecretKey: "two"}

	assert.Len(t, a.CSRFKey(), 32)
	assert.Equal(t, a.CSRFKey(), (&Config{SecretKey: "one"}).CSRFKey())
	assert.NotEqual(t, a.CSRFKey(), b.CSRFKey())
}
