// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration.
type Config struct {
	// Databases
	PostgresDSN   string
	ClickhouseDSN string
	RedisAddr     string

	// Market data
	ProviderBaseURL string
	StreamURL       string
	ProviderRPS     int
	CacheTTL        time.Duration

	// Backtest defaults
	Symbol         string
	InitialCapital float64
	FeeRate        float64
	Workers        int

	// Server
	ListenAddr string
	LogLevel   string
}

// Load initializes configuration from environment variables, after reading
// a .env file if one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),
		RedisAddr:     getEnvWithDefault("REDIS_ADDR", ""),

		ProviderBaseURL: getEnvWithDefault("PROVIDER_BASE_URL", "https://api.binance.com"),
		StreamURL:       getEnvWithDefault("STREAM_URL", "wss://stream.binance.com:9443"),
		ProviderRPS:     getEnvIntWithDefault("PROVIDER_RPS", 10),
		CacheTTL:        getEnvDurationWithDefault("CACHE_TTL", 6*time.Hour),

		Symbol:         getEnvWithDefault("SYMBOL", "BTCUSDT"),
		InitialCapital: getEnvFloatWithDefault("INITIAL_CAPITAL", 10000),
		FeeRate:        getEnvFloatWithDefault("FEE_RATE", 0.001),
		Workers:        getEnvIntWithDefault("WORKERS", 0),

		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnvWithDefault("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Helper functions for environment variable handling

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
