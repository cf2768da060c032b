// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the POS terminal server.
type Config struct {
	HTTPAddr string
	LogLevel string
	AppEnv   string

	// Local persistent store
	DatabaseURL string

	// Catalog snapshot cache (optional; memory cache when unset)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Remote inventory/orders service
	RemoteBaseURL string
	RemoteToken   string
	RemoteTimeout time.Duration

	// Cache age beyond which reads trigger a background refresh
	SyncStaleAfter time.Duration
}

// Load reads configuration from the environment with sane defaults.
func Load() Config {
	return Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		AppEnv:   getEnv("APP_ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),

		RemoteBaseURL: getEnv("REMOTE_BASE_URL", ""),
		RemoteToken:   getEnv("REMOTE_TOKEN", ""),
		RemoteTimeout: getEnvDuration("REMOTE_TIMEOUT", 30*time.Second),

		SyncStaleAfter: getEnvDuration("SYNC_STALE_AFTER", 3*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
