package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cardioshield/predictor/internal/logger"
	"github.com/cardioshield/predictor/internal/models"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Config holds database configuration options
type Config struct {
	// DatabasePath is the SQLite file, or MemoryPath
	DatabasePath string

	// LogLevel sets GORM logging verbosity
	LogLevel gormlogger.LogLevel

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns production settings for dbPath
func DefaultConfig(dbPath string) *Config {
	return &Config{
		DatabasePath: dbPath,
		LogLevel:     gormlogger.Warn,
		MaxIdleConns: 5,
		// SQLite serialises writers; one connection avoids "database is locked"
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
	}
}

// TestConfig returns an in-memory configuration for tests
func TestConfig() *Config {
	return &Config{
		DatabasePath:    MemoryPath,
		LogLevel:        gormlogger.Silent,
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: 0,
	}
}

// InitDB opens the database and runs migrations
func InitDB(config *Config, log logger.Logger) (*gorm.DB, error) {
	if config == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	if config.DatabasePath != MemoryPath {
		if err := ensureDBDirectory(config.DatabasePath); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(config.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	log.Info("Opening SQLite database", logger.String("path", config.DatabasePath))
	db, err := gorm.Open(sqlite.Open(config.DatabasePath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database at %s: %w", config.DatabasePath, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if config.DatabasePath != MemoryPath {
		if err := db.Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
			log.Warn("Failed to enable WAL mode", logger.Error(err))
		}
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database initialized")
	return db, nil
}

func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.PredictionRecord{},
		&models.AdminToken{},
	); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}

	return nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// Ping checks if the database connection is alive
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// ensureDBDirectory creates the parent directory of dbPath
func ensureDBDirectory(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists but is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}

	return os.MkdirAll(dir, 0o755)
}
