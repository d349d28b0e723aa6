package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "MODEL_DIR", "MODEL_WATCH", "HISTORY_ENABLED", "HISTORY_ENCRYPTION_KEY",
		"HISTORY_RETENTION_DAYS", "CLEANUP_INTERVAL", "ADMIN_EMAIL", "ADMIN_JWT_SECRET",
		"SES_FROM_EMAIL", "LOG_LEVEL", "SHUTDOWN_TIMEOUT", "PREDICT_RATE_LIMIT",
		"MODEL_WATCH_DEBOUNCE", "MODEL_RETRY_INTERVAL", "LOG_DEVELOPMENT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./models", cfg.Models.Directory)
	assert.True(t, cfg.Models.Watch)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 90, cfg.History.RetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.History.CleanupInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20, cfg.PredictRateLimit)
	assert.Equal(t, 5*time.Second, cfg.Models.RetryInterval)
	assert.Equal(t, "info", cfg.Logging.Level)

	// No key and no admin settings: both optional features are off
	assert.False(t, cfg.HistoryActive())
	assert.False(t, cfg.AdminActive())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_DIR", "/srv/models")
	t.Setenv("MODEL_WATCH", "false")
	t.Setenv("HISTORY_ENCRYPTION_KEY", "a2V5")
	t.Setenv("HISTORY_RETENTION_DAYS", "7")
	t.Setenv("CLEANUP_INTERVAL", "1h")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_JWT_SECRET", "c2VjcmV0")
	t.Setenv("SES_FROM_EMAIL", "noreply@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/srv/models", cfg.Models.Directory)
	assert.False(t, cfg.Models.Watch)
	assert.Equal(t, 7, cfg.History.RetentionDays)
	assert.Equal(t, time.Hour, cfg.History.CleanupInterval)
	assert.True(t, cfg.HistoryActive())
	assert.True(t, cfg.AdminActive())
}

func TestLoad_MalformedValuesAreReported(t *testing.T) {
	t.Setenv("MODEL_WATCH", "maybe")
	t.Setenv("HISTORY_RETENTION_DAYS", "many")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("PREDICT_RATE_LIMIT", "abc")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)

	for _, key := range []string{"MODEL_WATCH", "HISTORY_RETENTION_DAYS", "SHUTDOWN_TIMEOUT", "PREDICT_RATE_LIMIT"} {
		assert.Contains(t, err.Error(), key)
	}
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestLoad_SingleMalformedValue(t *testing.T) {
	t.Setenv("PREDICT_RATE_LIMIT", "abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREDICT_RATE_LIMIT: invalid integer")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"empty model dir", func(c *Config) { c.Models.Directory = "" }, true},
		{"negative retention", func(c *Config) { c.History.RetentionDays = -1 }, true},
		{"zero cleanup interval", func(c *Config) { c.History.CleanupInterval = 0 }, true},
		{"negative rate limit", func(c *Config) { c.PredictRateLimit = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:    "8080",
				Models:  ModelConfig{Directory: "./models"},
				History: HistoryConfig{RetentionDays: 30, CleanupInterval: time.Hour},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
