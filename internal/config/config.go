package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIBaseURL     string
	HTTPTimeout    time.Duration
	StorageBackend string
	StoragePath    string
	LogLevel       string
	LogFormat      string
	LogFile        string
}

func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000/api"),
		HTTPTimeout:    time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "sqlite")),
		StoragePath:    getEnv("STORAGE_PATH", "branchadmin.db"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogFile:        getEnv("LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}

	switch c.StorageBackend {
	case "sqlite", "bolt", "local":
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the %s backend", c.StorageBackend)
		}
	case "memory":
	default:
		return fmt.Errorf("invalid storage backend: %s (must be sqlite, bolt, local, or memory)", c.StorageBackend)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.LogFormat)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvAsInt returns -1 for a value that does not parse, so Validate reports
// it instead of silently using the default.
func getEnvAsInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return -1
	}
	return n
}
