package config

import (
	"os"
	"strconv"
	"time"
)

// AppConfig holds the service-level configuration
type AppConfig struct {
	MonitorSchedule   string
	MonitorOnStartup  bool
	RateLimitPerSec   float64
	RequestTimeout    time.Duration
	ScrapeDelay       time.Duration
	MaxMonitorWorkers int
}

// LoadAppConfig loads the service configuration from environment variables
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		// Every 12 hours, cron expression with seconds field
		MonitorSchedule:   getEnvOrDefault("MONITOR_SCHEDULE", "0 0 */12 * * *"),
		MonitorOnStartup:  getEnvOrDefault("MONITOR_ON_STARTUP", "true") == "true",
		RateLimitPerSec:   getEnvFloat("API_RATE_LIMIT_PER_SEC", 5),
		RequestTimeout:    getEnvDuration("API_REQUEST_TIMEOUT", 30*time.Second),
		ScrapeDelay:       getEnvDuration("SCRAPE_DELAY", 2*time.Second),
		MaxMonitorWorkers: getEnvInt("MAX_MONITOR_WORKERS", 2),
	}
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
