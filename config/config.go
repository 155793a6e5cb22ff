package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tradeconsole/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Backend endpoints
	BackendURL string // REST base URL, e.g. http://localhost:8000
	WSURL      string // Push channel URL, e.g. ws://localhost:8000/ws

	// Credentials
	TokenPath string // File holding the persisted bearer token (optional)

	// Timeouts and intervals
	HTTPTimeout        time.Duration // Per-request REST timeout
	QuotePollInterval  time.Duration // Timed quote snapshot pull; 0 disables
	HealthPollInterval time.Duration // Backend health probe interval
	HeartbeatInterval  time.Duration // Push channel heartbeat emit interval

	// Push channel reconnection
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int

	// Local market data cache
	CacheDBPath string

	// Logging
	LogLevel logger.LogLevel
}

// Valid quote poll intervals offered by the UI, plus zero for stopped.
var allowedQuotePollIntervals = map[time.Duration]bool{
	0:               true,
	1 * time.Second: true,
	3 * time.Second: true,
	5 * time.Second: true,
}

// Load reads configuration from environment variables (.env file).
func Load() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	cfg.BackendURL = getEnv("BACKEND_URL", "http://localhost:8000")
	if !strings.HasPrefix(cfg.BackendURL, "http://") && !strings.HasPrefix(cfg.BackendURL, "https://") {
		errs = append(errs, "BACKEND_URL must start with http:// or https://")
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	cfg.WSURL = getEnv("WS_URL", "ws://localhost:8000/ws")
	if !strings.HasPrefix(cfg.WSURL, "ws://") && !strings.HasPrefix(cfg.WSURL, "wss://") {
		errs = append(errs, "WS_URL must start with ws:// or wss://")
	}

	cfg.TokenPath = getEnv("TOKEN_PATH", "")

	httpTimeoutSeconds := getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)
	if httpTimeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.HTTPTimeout = time.Duration(httpTimeoutSeconds) * time.Second

	quotePollSeconds := getEnvAsInt("QUOTE_POLL_INTERVAL_SECONDS", 5)
	if quotePollSeconds < 0 {
		errs = append(errs, "QUOTE_POLL_INTERVAL_SECONDS cannot be negative")
	}
	cfg.QuotePollInterval = time.Duration(quotePollSeconds) * time.Second
	if !allowedQuotePollIntervals[cfg.QuotePollInterval] {
		errs = append(errs, "QUOTE_POLL_INTERVAL_SECONDS must be 0, 1, 3 or 5")
	}

	healthPollSeconds := getEnvAsInt("HEALTH_POLL_INTERVAL_SECONDS", 30)
	if healthPollSeconds <= 0 {
		errs = append(errs, "HEALTH_POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.HealthPollInterval = time.Duration(healthPollSeconds) * time.Second

	heartbeatSeconds := getEnvAsInt("HEARTBEAT_INTERVAL_SECONDS", 10)
	if heartbeatSeconds <= 0 {
		errs = append(errs, "HEARTBEAT_INTERVAL_SECONDS must be positive")
	}
	cfg.HeartbeatInterval = time.Duration(heartbeatSeconds) * time.Second

	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 1)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	cfg.CacheDBPath = getEnv("CACHE_DB_PATH", "./data/market_cache.db")
	if cfg.CacheDBPath == "" {
		errs = append(errs, "CACHE_DB_PATH must be set")
	}

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
