package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// Storage drivers
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config captures everything the server reads from the environment.
type Config struct {
	Port              string
	BaseURL           string
	DBDriver          string
	DBDSN             string
	DBRetries         int
	DBLogLevel        string
	JWTSecret         string
	JWTTTL            time.Duration
	CORSOrigins       []string
	AllowRegistration bool
	SeedDemoData      bool
	GeminiAPIKey      string
	GeminiModel       string
}

// DevJWTSecret signs tokens when JWT_SECRET is unset. Only the memory driver
// accepts it.
const DevJWTSecret = "change-me-glass-dispatch"

var ErrNoJWTSecret = errors.New("JWT_SECRET must be set when DB_DRIVER is not memory")

// FromEnv populates a Config using sensible defaults that can be overridden via environment variables.
// Demo data is seeded by default on the memory driver only.
func FromEnv() Config {
	port := getEnv("PORT", "8080")
	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMemory))
	seedDefault := "false"
	if driver == DriverMemory {
		seedDefault = "true"
	}
	return Config{
		Port:              port,
		BaseURL:           getEnv("BASE_URL", "http://localhost:"+port),
		DBDriver:          driver,
		DBDSN:             os.Getenv("DB_DSN"),
		DBRetries:         getEnvInt("DB_RETRIES", 5),
		DBLogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:         getEnv("JWT_SECRET", DevJWTSecret),
		JWTTTL:            getEnvDuration("JWT_TTL", 24*time.Hour),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		AllowRegistration: os.Getenv("ALLOW_REGISTRATION") == "true",
		SeedDemoData:      getEnv("SEED_DEMO_DATA", seedDefault) == "true",
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash-001"),
	}
}

// Validate rejects settings that are only safe for a throwaway memory store.
func (c Config) Validate() error {
	if c.DBDriver != DriverMemory && c.JWTSecret == DevJWTSecret {
		return ErrNoJWTSecret
	}
	return nil
}

// UsesDevSecret reports whether tokens are signed with the built-in secret.
func (c Config) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}

// GormLogLevel maps DB_LOG_LEVEL onto gorm's logger levels.
func (c Config) GormLogLevel() logger.LogLevel {
	switch strings.ToLower(c.DBLogLevel) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
