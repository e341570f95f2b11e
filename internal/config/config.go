package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"recite/internal/locale"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	BotToken string
	Storage  StorageConfig
	Relay    RelayConfig
	Widget   WidgetConfig
}

// StorageConfig selects and configures the vocabulary storage
type StorageConfig struct {
	Backend    string
	Database   DatabaseConfig
	SQLitePath string
	Redis      RedisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RelayConfig holds the background process connection settings
type RelayConfig struct {
	URL     string
	Timeout time.Duration // zero means no timeout
}

// WidgetConfig holds widget defaults
type WidgetConfig struct {
	Lang          string
	ReviewEnabled bool
	DefaultFrom   string
	DefaultTo     string
	DefaultAPI    string
}

// Load reads configuration from environment variables.
// Overrides are applied before validation.
func Load(overrides ...func(*Config)) (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("RELAY_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	reviewEnabled, err := getEnvBool("REVIEW_ENABLED", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken: os.Getenv("BOT_TOKEN"),
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", BackendSQLite),
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				Name:     getEnv("DB_NAME", "recite"),
				User:     getEnv("DB_USER", "recite"),
				Password: os.Getenv("DB_PASSWORD"),
			},
			SQLitePath: getEnv("SQLITE_PATH", "recite.db"),
			Redis: RedisConfig{
				Addr:     os.Getenv("REDIS_ADDR"),
				Password: os.Getenv("REDIS_PASSWORD"),
				DB:       redisDB,
				Prefix:   getEnv("REDIS_PREFIX", "recite"),
			},
		},
		Relay: RelayConfig{
			URL:     getEnv("RELAY_URL", "ws://localhost:8787/relay"),
			Timeout: timeout,
		},
		Widget: WidgetConfig{
			Lang:          getEnv("UI_LANG", "en"),
			ReviewEnabled: reviewEnabled,
			DefaultFrom:   getEnv("DEFAULT_FROM", "auto"),
			DefaultTo:     getEnv("DEFAULT_TO", "zh-CN"),
			DefaultAPI:    getEnv("DEFAULT_API", "Google"),
		},
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings required by the selected backend
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Relay.Timeout < 0 {
		return fmt.Errorf("RELAY_TIMEOUT cannot be negative")
	}
	for name, id := range map[string]string{"DEFAULT_FROM": c.Widget.DefaultFrom, "DEFAULT_TO": c.Widget.DefaultTo} {
		if !locale.Valid(id) {
			return fmt.Errorf("%s %q is not a valid language", name, id)
		}
	}
	if !locale.Valid(c.Widget.Lang) || c.Widget.Lang == "auto" {
		return fmt.Errorf("UI_LANG %q is not a valid language", c.Widget.Lang)
	}
	return nil
}

// ValidateBot checks the settings required by the chat host
func (c *Config) ValidateBot() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Storage.Database.Host,
		c.Storage.Database.Port,
		c.Storage.Database.User,
		c.Storage.Database.Password,
		c.Storage.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
