package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer          string // Issuer claim for session tokens
	AdminSetupCode  string // Optional: code required to bootstrap the first admin
	AdminAccessCode string // Optional: secret checked by the code verifier

	DatabaseFile string // Path to SQLite database file (default: ./site.db)
	RedisAddr    string // Optional: Redis address for the shared verify limiter

	VerifyMaxAttempts int           // Verify attempts per window (default: 5)
	VerifyWindow      time.Duration // Verify window length (default: 15m)

	SessionTTL time.Duration // Session token lifetime (default: 1h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:          getEnvOrDefault("SITE_ISSUER", "site-api"),
		AdminSetupCode:  os.Getenv("ADMIN_SETUP_CODE"),
		AdminAccessCode: os.Getenv("ADMIN_ACCESS_CODE"),

		DatabaseFile: getEnvOrDefault("SITE_DATABASE_FILE", "site.db"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),

		VerifyMaxAttempts: getEnvIntOrDefault("VERIFY_MAX_ATTEMPTS", 5),
		VerifyWindow:      getEnvDurationOrDefault("VERIFY_WINDOW", 15*time.Minute),

		SessionTTL: getEnvDurationOrDefault("SESSION_TTL", time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
