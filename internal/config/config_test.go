package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"BOT_TOKEN", "STORAGE_BACKEND",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"SQLITE_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX",
	"RELAY_URL", "RELAY_TIMEOUT", "UI_LANG", "REVIEW_ENABLED",
	"DEFAULT_FROM", "DEFAULT_TO", "DEFAULT_API",
}

// clearEnv unsets every config key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{
			Database: DatabaseConfig{
				Host:     "localhost",
				Port:     "5432",
				User:     "testuser",
				Password: "testpass",
				Name:     "testdb",
			},
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "recite.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "localhost", cfg.Storage.Database.Host)
	assert.Equal(t, "5432", cfg.Storage.Database.Port)
	assert.Equal(t, "recite", cfg.Storage.Redis.Prefix)
	assert.Equal(t, "ws://localhost:8787/relay", cfg.Relay.URL)
	assert.Zero(t, cfg.Relay.Timeout)
	assert.Equal(t, "en", cfg.Widget.Lang)
	assert.True(t, cfg.Widget.ReviewEnabled)
	assert.Equal(t, "auto", cfg.Widget.DefaultFrom)
	assert.Equal(t, "zh-CN", cfg.Widget.DefaultTo)
	assert.Equal(t, "Google", cfg.Widget.DefaultAPI)

	assert.Error(t, cfg.ValidateBot())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis://cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RELAY_TIMEOUT", "15s")
	t.Setenv("REVIEW_ENABLED", "false")
	t.Setenv("UI_LANG", "zh-CN")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis://cache:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, 15*time.Second, cfg.Relay.Timeout)
	assert.False(t, cfg.Widget.ReviewEnabled)
	assert.Equal(t, "zh-CN", cfg.Widget.Lang)
	assert.NoError(t, cfg.ValidateBot())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		errorKey string
	}{
		{name: "postgres without password", env: map[string]string{"STORAGE_BACKEND": "postgres"}, errorKey: "DB_PASSWORD"},
		{name: "redis without address", env: map[string]string{"STORAGE_BACKEND": "redis"}, errorKey: "REDIS_ADDR"},
		{name: "unknown backend", env: map[string]string{"STORAGE_BACKEND": "mongo"}, errorKey: "STORAGE_BACKEND"},
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "zero"}, errorKey: "REDIS_DB"},
		{name: "bad timeout", env: map[string]string{"RELAY_TIMEOUT": "soon"}, errorKey: "RELAY_TIMEOUT"},
		{name: "negative timeout", env: map[string]string{"RELAY_TIMEOUT": "-1s"}, errorKey: "RELAY_TIMEOUT"},
		{name: "bad review flag", env: map[string]string{"REVIEW_ENABLED": "maybe"}, errorKey: "REVIEW_ENABLED"},
		{name: "bad target language", env: map[string]string{"DEFAULT_TO": "??"}, errorKey: "DEFAULT_TO"},
		{name: "auto ui language", env: map[string]string{"UI_LANG": "auto"}, errorKey: "UI_LANG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errorKey)
		})
	}
}

func TestLoad_OverrideAppliedBeforeValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "postgres")

	_, err := Load()
	require.Error(t, err)

	cfg, err := Load(func(cfg *Config) {
		cfg.Storage.Backend = BackendMemory
	})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoad_OverrideIsValidated(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(func(cfg *Config) {
		cfg.Storage.Backend = BackendRedis
	})
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "REDIS_ADDR")
}
