package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "BASE_URL", "DB_DRIVER", "DB_DSN", "DB_RETRIES", "JWT_SECRET", "JWT_TTL", "CORS_ORIGINS", "SEED_DEMO_DATA", "ALLOW_REGISTRATION"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, 5, cfg.DBRetries)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.True(t, cfg.SeedDemoData)
	assert.False(t, cfg.AllowRegistration)
	assert.True(t, cfg.UsesDevSecret())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvDatabaseDefaults(t *testing.T) {
	for _, driver := range []string{DriverMySQL, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			t.Setenv("DB_DRIVER", driver)
			t.Setenv("SEED_DEMO_DATA", "")
			t.Setenv("JWT_SECRET", "")

			cfg := FromEnv()
			assert.False(t, cfg.SeedDemoData, "demo accounts must not land in a real database unasked")
			assert.ErrorIs(t, cfg.Validate(), ErrNoJWTSecret)

			t.Setenv("JWT_SECRET", "s3cret-from-vault")
			t.Setenv("SEED_DEMO_DATA", "true")
			cfg = FromEnv()
			assert.True(t, cfg.SeedDemoData)
			assert.False(t, cfg.UsesDevSecret())
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_RETRIES", "2")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("CORS_ORIGINS", " https://desk.example.com , ")
	t.Setenv("SEED_DEMO_DATA", "false")
	t.Setenv("ALLOW_REGISTRATION", "true")

	cfg := FromEnv()
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 2, cfg.DBRetries)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://desk.example.com"}, cfg.CORSOrigins)
	assert.False(t, cfg.SeedDemoData)
	assert.True(t, cfg.AllowRegistration)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, Config{DBLogLevel: "INFO"}.GormLogLevel())
	assert.Equal(t, logger.Silent, Config{DBLogLevel: "silent"}.GormLogLevel())
	assert.Equal(t, logger.Warn, Config{}.GormLogLevel())
}
