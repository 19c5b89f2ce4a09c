package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// Storage backend selection
	DataBackend string

	// SQLite
	SQLiteDBPath string

	// Flush policy
	FlushInterval time.Duration

	// Snapshot export target directory
	ExportDir string
}

func Load() *Config {
	cfg := &Config{
		DataBackend:   getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/caja.db"),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 30*time.Second),
		ExportDir:     getEnv("EXPORT_DIR", "."),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	validBackends := []string{"sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate flush policy
	if c.FlushInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid flush interval %v: must be at least 1 second", c.FlushInterval))
	} else if c.FlushInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid flush interval %v: must be at most 24 hours", c.FlushInterval))
	}

	if c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
