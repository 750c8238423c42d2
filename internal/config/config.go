package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// RedisURL is normalized to host:port; REDIS_URL may be set either
	// bare or as a redis:// URL.
	RedisURL string
	DataDir  string

	// Automatic-update tuning: one tick every TickInterval advances
	// TimeScale simulated hours.
	TickInterval time.Duration
	TimeScale    float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    normalizeRedisAddr(getEnv("REDIS_URL", "localhost:6379")),
		DataDir:     getEnv("DATA_DIR", "./data"),
	}

	interval, err := time.ParseDuration(getEnv("TICK_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL must be positive")
	}
	cfg.TickInterval = interval

	scale, err := strconv.ParseFloat(getEnv("TIME_SCALE", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_SCALE: %w", err)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("TIME_SCALE must be positive")
	}
	cfg.TimeScale = scale

	return cfg, nil
}

// normalizeRedisAddr strips the redis:// scheme and any trailing slash
// so storage and queue both receive a bare host:port.
func normalizeRedisAddr(v string) string {
	v = strings.TrimPrefix(v, "redis://")
	return strings.TrimSuffix(v, "/")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
