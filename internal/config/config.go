package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the tracker.
type Config struct {
	// GameLogPath is the game client's appended log file.
	GameLogPath string

	// OffsetDBPath is the BoltDB file holding resume positions.
	OffsetDBPath string

	// ItemsFile is the YAML item reference table (names, icons, fallback
	// FE prices).
	ItemsFile string

	// PollInterval is how often the watcher checks for new lines.
	PollInterval time.Duration

	// StatsInterval is how often ingest progress is logged.
	StatsInterval time.Duration

	// HubZoneTokens overrides the built-in hub zone name fragments.
	HubZoneTokens []string

	// PauseViews overrides the built-in set of views that stop the
	// play-time clock.
	PauseViews []string

	// Observability
	LogLevel string
	LogFile  string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		GameLogPath:  getEnv("GAME_LOG_PATH", ""),
		OffsetDBPath: getEnv("OFFSET_DB_PATH", "torchtrack.db"),
		ItemsFile:    getEnv("ITEMS_FILE", "configs/items.yaml"),

		PollInterval:  time.Duration(getEnvInt("POLL_INTERVAL_MS", 500)) * time.Millisecond,
		StatsInterval: time.Duration(getEnvInt("STATS_INTERVAL_SEC", 60)) * time.Second,

		HubZoneTokens: parseList(getEnv("HUB_ZONE_TOKENS", "")),
		PauseViews:    parseList(getEnv("PAUSE_VIEWS", "")),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.GameLogPath == "" {
		return fmt.Errorf("GAME_LOG_PATH is required")
	}
	if c.OffsetDBPath == "" {
		return fmt.Errorf("OFFSET_DB_PATH must not be empty")
	}
	if c.PollInterval < 50*time.Millisecond {
		return fmt.Errorf("POLL_INTERVAL_MS must be at least 50")
	}
	if c.StatsInterval < time.Second {
		return fmt.Errorf("STATS_INTERVAL_SEC must be at least 1")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseList parses a semicolon-separated list.
func parseList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ";")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
