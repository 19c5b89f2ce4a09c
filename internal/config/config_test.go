package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid sqlite backend config",
			config: Config{
				DataBackend:   "sqlite",
				SQLiteDBPath:  "./test.db",
				FlushInterval: 30 * time.Second,
				ExportDir:     ".",
			},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			config: Config{
				DataBackend:   "memory",
				FlushInterval: 30 * time.Second,
				ExportDir:     ".",
			},
			wantErr: false,
		},
		{
			name: "invalid data backend",
			config: Config{
				DataBackend:   "redis",
				FlushInterval: 30 * time.Second,
				ExportDir:     ".",
			},
			wantErr:     true,
			errorString: "invalid data backend 'redis'",
		},
		{
			name: "empty sqlite path with sqlite backend",
			config: Config{
				DataBackend:   "sqlite",
				SQLiteDBPath:  "",
				FlushInterval: 30 * time.Second,
				ExportDir:     ".",
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "flush interval too short",
			config: Config{
				DataBackend:   "memory",
				FlushInterval: 100 * time.Millisecond,
				ExportDir:     ".",
			},
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name: "flush interval too long",
			config: Config{
				DataBackend:   "memory",
				FlushInterval: 48 * time.Hour,
				ExportDir:     ".",
			},
			wantErr:     true,
			errorString: "must be at most 24 hours",
		},
		{
			name: "empty export dir",
			config: Config{
				DataBackend:   "memory",
				FlushInterval: 30 * time.Second,
				ExportDir:     "",
			},
			wantErr:     true,
			errorString: "export directory cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() should return an error")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Validate() = %q, want it to contain %q", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATA_BACKEND", "SQLITE_DB_PATH", "FLUSH_INTERVAL", "EXPORT_DIR"} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.DataBackend != "sqlite" {
		t.Errorf("DataBackend = %q", cfg.DataBackend)
	}
	if cfg.SQLiteDBPath != "./data/caja.db" {
		t.Errorf("SQLiteDBPath = %q", cfg.SQLiteDBPath)
	}
	if cfg.FlushInterval != 30*time.Second {
		t.Errorf("FlushInterval = %v", cfg.FlushInterval)
	}
	if cfg.ExportDir != "." {
		t.Errorf("ExportDir = %q", cfg.ExportDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("FLUSH_INTERVAL", "5s")

	cfg := Load()
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q", cfg.DataBackend)
	}
	if cfg.FlushInterval != 5*time.Second {
		t.Errorf("FlushInterval = %v", cfg.FlushInterval)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("FLUSH_INTERVAL", "not-a-duration")

	cfg := Load()
	if cfg.FlushInterval != 30*time.Second {
		t.Errorf("FlushInterval = %v, want default", cfg.FlushInterval)
	}
}
