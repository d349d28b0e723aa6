package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the prediction service
type Config struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration

	// PredictRateLimit caps prediction requests per second across all clients (0 disables)
	PredictRateLimit int

	Models   ModelConfig
	Database DatabaseConfig
	History  HistoryConfig
	Admin    AdminConfig
	Email    EmailConfig
	Logging  LoggingConfig
}

// ModelConfig describes where model artifacts live
type ModelConfig struct {
	// Directory holding "Random Forest.json" and "Support Vector Machine.json"
	Directory string
	// Watch enables reloading when files in Directory change
	Watch bool
	// WatchDebounce collapses bursts of file events into one reload
	WatchDebounce time.Duration
	// RetryInterval is the minimum gap between reloads triggered by requests
	// for an unavailable model (0 disables)
	RetryInterval time.Duration
}

// DatabaseConfig holds the SQLite location
type DatabaseConfig struct {
	Path string
}

// HistoryConfig controls the encrypted prediction audit trail
type HistoryConfig struct {
	Enabled bool
	// EncryptionKey is the base64-encoded 32-byte AES key for stored inputs
	EncryptionKey string
	// RetentionDays is how long records are kept before cleanup removes them
	RetentionDays int
	// CleanupInterval is the period of the background cleanup job
	CleanupInterval time.Duration
}

// AdminConfig holds admin authentication settings
type AdminConfig struct {
	Email string
	// JWTSecret is the base64-encoded secret for signing admin tokens
	JWTSecret string
}

// EmailConfig holds the AWS SES sender settings
type EmailConfig struct {
	FromEmail string
	Region    string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string
	Development bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present. Malformed values are reported
// together rather than replaced by defaults.
func Load() (*Config, error) {
	// Missing .env is the normal case in containers
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "release"),
		ShutdownTimeout:  env.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		PredictRateLimit: env.integer("PREDICT_RATE_LIMIT", 20),
		Models: ModelConfig{
			Directory:     getEnv("MODEL_DIR", "./models"),
			Watch:         env.boolean("MODEL_WATCH", true),
			WatchDebounce: env.duration("MODEL_WATCH_DEBOUNCE", 500*time.Millisecond),
			RetryInterval: env.duration("MODEL_RETRY_INTERVAL", 5*time.Second),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", filepath.Join(".", "data", "cardioshield.db")),
		},
		History: HistoryConfig{
			Enabled:         env.boolean("HISTORY_ENABLED", true),
			EncryptionKey:   os.Getenv("HISTORY_ENCRYPTION_KEY"),
			RetentionDays:   env.integer("HISTORY_RETENTION_DAYS", 90),
			CleanupInterval: env.duration("CLEANUP_INTERVAL", 24*time.Hour),
		},
		Admin: AdminConfig{
			Email:     os.Getenv("ADMIN_EMAIL"),
			JWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		},
		Email: EmailConfig{
			FromEmail: os.Getenv("SES_FROM_EMAIL"),
			Region:    getEnv("AWS_REGION", "eu-central-1"),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: env.boolean("LOG_DEVELOPMENT", false),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.Models.Directory == "" {
		return fmt.Errorf("MODEL_DIR must not be empty")
	}
	if c.PredictRateLimit < 0 {
		return fmt.Errorf("PREDICT_RATE_LIMIT cannot be negative (got: %d)", c.PredictRateLimit)
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS cannot be negative (got: %d)", c.History.RetentionDays)
	}
	if c.History.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive (got: %s)", c.History.CleanupInterval)
	}
	return nil
}

// HistoryActive reports whether prediction records can be stored
func (c *Config) HistoryActive() bool {
	return c.History.Enabled && c.History.EncryptionKey != ""
}

// AdminActive reports whether admin endpoints can be served
func (c *Config) AdminActive() bool {
	return c.Admin.Email != "" && c.Admin.JWTSecret != "" && c.Email.FromEmail != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and collects every malformed value
type envReader struct {
	errs []error
}

func (e *envReader) invalid(key, value, kind string) {
	e.errs = append(e.errs, fmt.Errorf("%s: invalid %s %q", key, kind, value))
}

func (e *envReader) boolean(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		e.invalid(key, value, "boolean")
		return defaultValue
	}
	return parsed
}

func (e *envReader) integer(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		e.invalid(key, value, "integer")
		return defaultValue
	}
	return parsed
}

func (e *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		e.invalid(key, value, "duration")
		return defaultValue
	}
	return parsed
}
