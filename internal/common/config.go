package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Import ImportConfig `yaml:"import"`
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	Backend         string        `yaml:"backend"` // "memory" | "postgres" | "sqlite" | "redis"
	DSN             string        `yaml:"dsn"`
	SQLitePath      string        `yaml:"sqlite_path"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisDB         int           `yaml:"redis_db"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
}

// ImportConfig holds bulk-import runtime configuration.
type ImportConfig struct {
	Workers         int           `yaml:"workers"`
	QueueSize       int           `yaml:"queue_size"`
	IngestTimeout   time.Duration `yaml:"ingest_timeout"`
	WatchRoots      []string      `yaml:"watch_roots"`
	WatchDebounce   time.Duration `yaml:"watch_debounce"`
	DefaultCurrency string        `yaml:"default_currency"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:         getEnv("STORE_BACKEND", "sqlite"),
			DSN:             getEnv("DB_URL", ""),
			SQLitePath:      getEnv("SQLITE_PATH", "./sessions.db"),
			RedisAddr:       getEnv("REDIS_ADDR", ""),
			RedisDB:         getEnvAsInt("REDIS_DB", 0),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Import: ImportConfig{
			Workers:         getEnvAsInt("IMPORT_WORKERS", 4),
			QueueSize:       getEnvAsInt("IMPORT_QUEUE_SIZE", 256),
			IngestTimeout:   getEnvAsDuration("IMPORT_INGEST_TIMEOUT", time.Minute),
			WatchDebounce:   getEnvAsDuration("IMPORT_WATCH_DEBOUNCE", 500*time.Millisecond),
			DefaultCurrency: getEnv("IMPORT_DEFAULT_CURRENCY", "EUR"),
		},
	}
}

// LoadConfigFile loads configuration from a YAML file, with environment
// variables as the base layer (file values win where set).
func LoadConfigFile(path string) (*Config, error) {
	cfg := LoadConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres backend", ErrInvalidInput)
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return NewAppError("CONFIG_ERROR", "REDIS_ADDR is required for the redis backend", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "unknown store backend: "+c.Store.Backend, ErrInvalidInput)
	}
	if c.Import.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "IMPORT_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
