package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Analytics AnalyticsConfig
	Provider  ProviderConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AnalyticsConfig holds the constants the performance engines depend on.
type AnalyticsConfig struct {
	RiskFreeRate float64
}

// ProviderConfig holds market data provider settings. SecretKey is the
// fernet key used to encrypt the provider API token at rest; SyncSchedule is
// a cron expression for the automatic price sync job.
type ProviderConfig struct {
	BaseURL      string
	SecretKey    string
	SyncSchedule string
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	riskFreeRate, err := getEnvFloat("RISK_FREE_RATE", 0.02)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_analytics.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Analytics: AnalyticsConfig{
			RiskFreeRate: riskFreeRate,
		},
		Provider: ProviderConfig{
			BaseURL:      getEnv("PROVIDER_BASE_URL", "https://eodhd.com/api"),
			SecretKey:    getEnv("PROVIDER_SECRET_KEY", ""),
			SyncSchedule: getEnv("PRICE_SYNC_SCHEDULE", "0 18 * * 1-5"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "false") == "true",
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvFloat gets a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
